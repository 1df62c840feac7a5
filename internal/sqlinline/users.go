package sqlinline

// Column order shared by every account select; see repo.scanAccount.
const QInsertUser = `--sql 7a71d359-f6e6-42d2-bedc-41cc3c13ee1c
insert into users (
    id, email, password_hash, created_at, plan_type, subscription_status,
    trial_start_date, is_trial_active, trial_reports_used, daily_reports_enabled
)
values ($1::uuid, $2::text, $3::text, $4::timestamptz, $5::text, $6::text, null, $7::bool, 0, $8::bool);
`

const QSelectUserByID = `--sql bfeae008-8277-4434-a21f-ce1832c40368
select
    id::text,
    email,
    password_hash,
    created_at,
    plan_type,
    subscription_status,
    trial_start_date,
    is_trial_active,
    trial_reports_used,
    birth_date,
    birth_time,
    birth_place,
    palm_photo,
    daily_reports_enabled
from users
where id = $1::uuid
limit 1;
`

const QSelectUserByEmail = `--sql 95866b86-979b-4fa4-8194-e04f4edfd5da
select
    id::text,
    email,
    password_hash,
    created_at,
    plan_type,
    subscription_status,
    trial_start_date,
    is_trial_active,
    trial_reports_used,
    birth_date,
    birth_time,
    birth_place,
    palm_photo,
    daily_reports_enabled
from users
where email = lower($1::text)
limit 1;
`

const QStartTrial = `--sql 3faac208-32a9-44bf-a055-62c6ae6ec0cf
update users
set trial_start_date = $2::timestamptz
where id = $1::uuid
  and trial_start_date is null;
`

const QIncrementTrialReportsUsed = `--sql eb4461a0-3e0a-492a-9247-b165e66a84d9
update users
set trial_reports_used = trial_reports_used + 1
where id = $1::uuid
returning trial_reports_used;
`

const QUpdateBirthData = `--sql 3d451b23-d2c6-426b-a6c1-35eeec642f4e
update users
set birth_date = $2::text,
    birth_time = nullif($3::text, ''),
    birth_place = $4::text,
    palm_photo = $5::bool
where id = $1::uuid;
`

const QUpdatePlan = `--sql 84ffa903-cf4b-4ae8-b47d-f117916fd26a
update users
set plan_type = $2::text,
    subscription_status = $3::text
where id = $1::uuid;
`

const QSetDailyReports = `--sql 71dbe75f-1a4c-4c59-803a-35f6aeb6be1e
update users
set daily_reports_enabled = $2::bool
where id = $1::uuid;
`

const QListDailyRecipients = `--sql b33278bc-6165-42cc-bdf1-33e052292f30
select
    id::text,
    email,
    password_hash,
    created_at,
    plan_type,
    subscription_status,
    trial_start_date,
    is_trial_active,
    trial_reports_used,
    birth_date,
    birth_time,
    birth_place,
    palm_photo,
    daily_reports_enabled
from users
where plan_type = 'premium'
  and subscription_status = 'active'
  and daily_reports_enabled
order by created_at asc;
`
