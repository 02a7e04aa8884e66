// Package dbtest opens throwaway in-memory sqlite databases carrying the
// lifecycle schema so repository and engine tests run without Postgres.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE loads (
  id TEXT PRIMARY KEY,
  shipper_id TEXT NOT NULL,
  title TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  currency TEXT NOT NULL DEFAULT 'USD',
  asking_amount NUMERIC NOT NULL,
  awarded_offer_id TEXT,
  assigned_hauler_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE load_offers (
  id TEXT PRIMARY KEY,
  load_id TEXT NOT NULL REFERENCES loads(id),
  hauler_id TEXT NOT NULL,
  created_by TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  message TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  expires_at DATETIME,
  accepted_at DATETIME,
  rejected_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_load_offers_accepted ON load_offers(load_id) WHERE status = 'accepted';`,
	`CREATE TABLE vehicles (
  id TEXT PRIMARY KEY,
  hauler_id TEXT NOT NULL,
  label TEXT NOT NULL,
  is_placeholder BOOLEAN NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
	`CREATE TABLE drivers (
  id TEXT PRIMARY KEY,
  hauler_id TEXT NOT NULL,
  name TEXT NOT NULL,
  is_placeholder BOOLEAN NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
	`CREATE TABLE trips (
  id TEXT PRIMARY KEY,
  load_id TEXT NOT NULL REFERENCES loads(id),
  hauler_id TEXT NOT NULL,
  driver_id TEXT,
  vehicle_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending_escrow',
  started_at DATETIME,
  delivered_at DATETIME,
  confirmed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_trips_load ON trips(load_id);`,
	`CREATE TABLE payments (
  id TEXT PRIMARY KEY,
  load_id TEXT NOT NULL REFERENCES loads(id),
  trip_id TEXT NOT NULL REFERENCES trips(id),
  payer_user_id TEXT NOT NULL,
  payee_user_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  platform_fee NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'awaiting_funding',
  is_escrow BOOLEAN NOT NULL DEFAULT 1,
  auto_release_at DATETIME,
  provider_payment_ref TEXT,
  provider_charge_ref TEXT,
  funded_at DATETIME,
  released_at DATETIME,
  refunded_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_payments_trip ON payments(trip_id);`,
	`CREATE TABLE disputes (
  id TEXT PRIMARY KEY,
  trip_id TEXT NOT NULL REFERENCES trips(id),
  payment_id TEXT NOT NULL REFERENCES payments(id),
  opened_by_user_id TEXT NOT NULL,
  opened_by_role TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'open',
  reason_code TEXT NOT NULL,
  description TEXT,
  requested_action TEXT,
  resolution_type TEXT,
  resolution_amount_to_hauler NUMERIC,
  resolution_amount_to_shipper NUMERIC,
  resolution_notes TEXT,
  resolved_by_user_id TEXT,
  resolved_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE UNIQUE INDEX ux_disputes_active_payment ON disputes(payment_id) WHERE status IN ('open', 'under_review');`,
}

// Open returns a fresh database with every lifecycle table created. The pool
// is pinned to one connection so a transaction and the assertions that follow
// it observe the same in-memory database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}
