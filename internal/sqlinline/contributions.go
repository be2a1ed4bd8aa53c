package sqlinline

// QInsertContribution only inserts when the parent campaign exists; no row
// returned means the campaign is missing.
const QInsertContribution = `--sql d2010f9d-f505-4d52-9d52-984298d6d6d1
insert into contributions(id, campaign_id, amount, contributor_name, contributor_email, status, created_at, updated_at)
select $1::uuid, c.id, $3::numeric, $4::text, $5::text, 'pending', now(), now()
from campaigns c
where c.id = $2::uuid
returning created_at, updated_at;
`

const QSelectContributionByID = `--sql 36ca63e9-b62b-44bd-a246-20b9fd9d3571
select id::text, campaign_id::text, amount::text, contributor_name, contributor_email, status, transaction_nsu, order_nsu, created_at, updated_at
from contributions
where id = $1::uuid;
`

// QUpdateContributionStatus compares against the status read beforehand so a
// concurrent writer cannot be silently overwritten.
const QUpdateContributionStatus = `--sql cb4b3344-cac4-4a06-b071-aa5ce847d07e
update contributions
set status = $2::text,
    transaction_nsu = coalesce($3::text, transaction_nsu),
    updated_at = now()
where id = $1::uuid
  and status = $4::text
returning id::text, campaign_id::text, amount::text, contributor_name, contributor_email, status, transaction_nsu, order_nsu, created_at, updated_at;
`

const QAttachOrderNSU = `--sql 97bf9f79-dc74-4c4e-95c0-35cfce26a7cf
update contributions
set order_nsu = $2::text,
    updated_at = now()
where id = $1::uuid
  and status = 'pending';
`

const QListCompletedContributions = `--sql 2abcaa73-6cba-4396-b6e1-3c7d43e96e01
select id::text, campaign_id::text, amount::text, contributor_name, contributor_email, status, transaction_nsu, order_nsu, created_at, updated_at
from contributions
where campaign_id = any($1::uuid[])
  and status = 'completed'
order by created_at desc;
`

const QListStalePendingContributions = `--sql d5c10e4c-6645-42a3-868b-9c46572b2959
select id::text, campaign_id::text, amount::text, contributor_name, contributor_email, status, transaction_nsu, order_nsu, created_at, updated_at
from contributions
where status = 'pending'
  and created_at < $1::timestamptz
order by created_at asc
limit $2::int;
`
