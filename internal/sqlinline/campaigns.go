package sqlinline

const QInsertCampaign = `--sql d135c2ef-39fd-4b27-abb5-fa606b2788cb
insert into campaigns(id, name, description, images, goal, handle, user_id, checkout_url, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::numeric, $6::text, $7::text, nullif($8::text, ''), now(), now())
returning created_at, updated_at;
`

const QSelectCampaignByID = `--sql 347cef0e-f37a-439e-a5b7-1afb4a6155bb
select id::text, name, description, images, goal::text, handle, user_id, coalesce(checkout_url, ''), created_at, updated_at
from campaigns
where id = $1::uuid;
`

const QListCampaigns = `--sql 4a443416-d44a-4c12-98c3-014d0048db78
select id::text, name, description, images, goal::text, handle, user_id, coalesce(checkout_url, ''), created_at, updated_at
from campaigns
order by created_at desc;
`

const QListCampaignsByOwner = `--sql 6dfb998e-32d3-48d6-adca-5e75c4e6387f
select id::text, name, description, images, goal::text, handle, user_id, coalesce(checkout_url, ''), created_at, updated_at
from campaigns
where user_id = $1::text
order by created_at desc;
`

const QUpdateCampaign = `--sql 7d334ecf-6040-4fea-84b3-54a2c5965e0a
update campaigns
set name = $2::text,
    description = $3::text,
    images = $4::text,
    goal = $5::numeric,
    handle = $6::text,
    updated_at = now()
where id = $1::uuid
returning id::text, name, description, images, goal::text, handle, user_id, coalesce(checkout_url, ''), created_at, updated_at;
`
