// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migration

// Tables lists the tables which are created by the Initializer in
// the creation order.
var Tables = []string{
	"parks",
	"work_rules",
	"cars",
	"balances",
	"drivers",
	"orders",
	"transaction_categories",
	"transactions",
	"watermarks",
	"sync_runs",
}

const tables = `
CREATE TABLE parks (
    id          BIGSERIAL PRIMARY KEY,
    external_id TEXT NOT NULL UNIQUE,
    client_id   TEXT NOT NULL,
    api_key     TEXT NOT NULL,
    name        TEXT NOT NULL DEFAULT '',
    city        TEXT NOT NULL DEFAULT '',
    time_zone   TEXT NOT NULL DEFAULT '',
    is_active   BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE work_rules (
    id          BIGSERIAL PRIMARY KEY,
    park_id     BIGINT NOT NULL REFERENCES parks (id) ON DELETE CASCADE,
    external_id TEXT NOT NULL,
    name        TEXT NOT NULL,
    is_enabled  BOOLEAN NOT NULL,
    UNIQUE (park_id, external_id)
);

CREATE TABLE cars (
    id          BIGSERIAL PRIMARY KEY,
    park_id     BIGINT NOT NULL REFERENCES parks (id) ON DELETE CASCADE,
    external_id TEXT NOT NULL,
    brand       TEXT NOT NULL,
    model       TEXT NOT NULL,
    year        INTEGER NOT NULL,
    color       TEXT NOT NULL,
    number      TEXT NOT NULL,
    callsign    TEXT NOT NULL,
    vin         TEXT NOT NULL,
    status      TEXT NOT NULL,
    categories  JSONB NOT NULL DEFAULT '[]',
    amenities   JSONB NOT NULL DEFAULT '[]',
    UNIQUE (park_id, external_id)
);

CREATE TABLE balances (
    id            BIGSERIAL PRIMARY KEY,
    external_id   TEXT NOT NULL UNIQUE,
    balance       NUMERIC NOT NULL,
    balance_limit NUMERIC NOT NULL,
    currency      TEXT NOT NULL,
    type          TEXT NOT NULL
);

CREATE TABLE drivers (
    id                  BIGSERIAL PRIMARY KEY,
    park_id             BIGINT NOT NULL REFERENCES parks (id) ON DELETE CASCADE,
    external_id         TEXT NOT NULL,
    first_name          TEXT NOT NULL,
    last_name           TEXT NOT NULL,
    middle_name         TEXT NOT NULL,
    phone               TEXT NOT NULL,
    work_status         TEXT NOT NULL,
    created_at          TIMESTAMPTZ,
    work_rule_id        BIGINT REFERENCES work_rules (id) ON DELETE SET NULL,
    balance_id          BIGINT REFERENCES balances (id) ON DELETE SET NULL,
    license_number      TEXT NOT NULL,
    license_country     TEXT NOT NULL,
    license_issue_date  DATE,
    license_expiry_date DATE,
    UNIQUE (park_id, external_id)
);

CREATE TABLE orders (
    id                    BIGSERIAL PRIMARY KEY,
    park_id               BIGINT NOT NULL REFERENCES parks (id) ON DELETE CASCADE,
    driver_id             BIGINT NOT NULL REFERENCES drivers (id) ON DELETE CASCADE,
    car_id                BIGINT REFERENCES cars (id) ON DELETE SET NULL,
    external_id           TEXT NOT NULL UNIQUE,
    short_id              BIGINT NOT NULL,
    status                TEXT NOT NULL,
    category              TEXT NOT NULL,
    payment_method        TEXT NOT NULL,
    price                 NUMERIC NOT NULL,
    booked_at             TIMESTAMPTZ,
    ended_at              TIMESTAMPTZ,
    address_from          TEXT NOT NULL,
    address_from_lat      DOUBLE PRECISION NOT NULL,
    address_from_lon      DOUBLE PRECISION NOT NULL,
    route_points          JSONB NOT NULL DEFAULT '[]',
    transactions_ingested BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX orders_pending_idx ON orders (park_id, id)
    WHERE NOT transactions_ingested;

CREATE INDEX orders_ended_at_idx ON orders (park_id, ended_at);

CREATE TABLE transaction_categories (
    id          BIGSERIAL PRIMARY KEY,
    park_id     BIGINT NOT NULL REFERENCES parks (id) ON DELETE CASCADE,
    external_id TEXT NOT NULL,
    name        TEXT NOT NULL,
    group_id    TEXT NOT NULL,
    group_name  TEXT NOT NULL,
    is_enabled  BOOLEAN NOT NULL,
    UNIQUE (park_id, external_id)
);

CREATE TABLE transactions (
    id            BIGSERIAL PRIMARY KEY,
    park_id       BIGINT NOT NULL REFERENCES parks (id) ON DELETE CASCADE,
    driver_id     BIGINT NOT NULL REFERENCES drivers (id) ON DELETE CASCADE,
    order_id      BIGINT NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
    external_id   TEXT NOT NULL UNIQUE,
    event_at      TIMESTAMPTZ,
    category_id   TEXT NOT NULL,
    category_name TEXT NOT NULL,
    group_id      TEXT NOT NULL,
    amount        NUMERIC NOT NULL,
    currency      TEXT NOT NULL,
    description   TEXT NOT NULL
);

CREATE TABLE watermarks (
    job        TEXT PRIMARY KEY,
    date       DATE NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE sync_runs (
    id          BIGSERIAL PRIMARY KEY,
    task        TEXT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    status      TEXT NOT NULL,
    parks       INTEGER NOT NULL,
    upserted    INTEGER NOT NULL,
    skipped     INTEGER NOT NULL,
    message     TEXT NOT NULL
);

CREATE INDEX sync_runs_started_at_idx ON sync_runs (started_at DESC);
`

const devData = `
INSERT INTO parks (external_id, client_id, api_key, name, city, time_zone, is_active)
VALUES ('sample-park', 'taxi/park/sample-park', 'change-me', 'Sample Park', 'Moscow', 'Europe/Moscow', FALSE);
`
