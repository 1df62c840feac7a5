package sqlinline

const QSelectIntegrationToken = `--sql 7daabff7-5963-44ce-9cd2-4a43d9b04f03
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 93a4610b-9db8-48d3-a52b-a1a97b9d3f74
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = integration_tokens.properties || excluded.properties,
    updated_at = now();
`
