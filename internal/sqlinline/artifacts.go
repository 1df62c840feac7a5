package sqlinline

// daily_reports and daily_insights carry unique(user_id, <date>) so a second
// insert for the same day fails with 23505.

const QSelectDailyReport = `--sql fa225627-c295-4150-86d1-18f1d7227d03
select id::text, user_id::text, report_content, report_date, is_trial_report, created_at
from daily_reports
where user_id = $1::uuid
  and report_date = $2::date
limit 1;
`

const QInsertDailyReport = `--sql 388e1571-43cf-4878-a79d-394ed964d7a7
insert into daily_reports (id, user_id, report_content, report_date, is_trial_report, created_at)
values ($1::uuid, $2::uuid, $3::text, $4::date, $5::bool, $6::timestamptz)
returning id::text, user_id::text, report_content, report_date, is_trial_report, created_at;
`

const QListDailyReports = `--sql 44fba43f-cc02-4838-a74b-f517c5c9c39a
select id::text, user_id::text, report_content, report_date, is_trial_report, created_at
from daily_reports
where user_id = $1::uuid
order by report_date desc
limit $2::int;
`

const QSelectDailyInsight = `--sql e236f646-d378-4d63-9308-d0955b9052fb
select id::text, user_id::text, insight_content, insight_date, false, created_at
from daily_insights
where user_id = $1::uuid
  and insight_date = $2::date
limit 1;
`

const QInsertDailyInsight = `--sql 840ce16c-4a20-4ebf-950c-2f4635d2fa2a
insert into daily_insights (id, user_id, insight_content, insight_date, created_at)
values ($1::uuid, $2::uuid, $3::text, $4::date, $5::timestamptz)
returning id::text, user_id::text, insight_content, insight_date, false, created_at;
`

const QListDailyInsights = `--sql d612472e-1c06-4360-987c-95482879750d
select id::text, user_id::text, insight_content, insight_date, false, created_at
from daily_insights
where user_id = $1::uuid
order by insight_date desc
limit $2::int;
`
