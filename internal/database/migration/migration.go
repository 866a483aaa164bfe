package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id                           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email                        TEXT        NOT NULL UNIQUE,
  name                         TEXT,
  password_hash                TEXT        NOT NULL,
  verified                     BOOLEAN     NOT NULL DEFAULT FALSE,
  verification_code            TEXT,
  verification_code_expires_at TIMESTAMPTZ,
  verified_at                  TIMESTAMPTZ,
  active                       BOOLEAN     NOT NULL DEFAULT TRUE,
  last_login_at                TIMESTAMPTZ,
  created_at                   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at                   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_sessions",
		SQL: `CREATE TABLE IF NOT EXISTS sessions (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id        UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  token_hash     TEXT        NOT NULL UNIQUE,
  expires_at     TIMESTAMPTZ NOT NULL,
  last_active_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  ip_address     TEXT,
  user_agent     TEXT,
  revoked        BOOLEAN     NOT NULL DEFAULT FALSE,
  revoked_at     TIMESTAMPTZ,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_sessions_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions (user_id);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                      UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  filename                TEXT        NOT NULL,
  original_filename       TEXT        NOT NULL,
  file_type               TEXT        NOT NULL,
  content_type            TEXT        NOT NULL,
  storage_path            TEXT        NOT NULL UNIQUE,
  size                    BIGINT      NOT NULL CHECK (size >= 0),
  hash                    TEXT,
  user_id                 UUID        REFERENCES users(id) ON DELETE SET NULL,
  status                  TEXT        NOT NULL DEFAULT 'pending',
  error_message           TEXT,
  chunk_strategy          TEXT,
  chunk_size              BIGINT,
  chunk_overlap           BIGINT,
  total_chunks            BIGINT      NOT NULL DEFAULT 0,
  total_tokens            BIGINT      NOT NULL DEFAULT 0,
  processing_started_at   TIMESTAMPTZ,
  processing_completed_at TIMESTAMPTZ,
  processing_duration_ms  BIGINT      NOT NULL DEFAULT 0,
  created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_status ON documents (status);`,
	},
	{
		Name: "create_index_documents_file_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_file_type ON documents (file_type);`,
	},
	{
		Name: "create_index_documents_hash",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents (hash);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
	{
		Name: "create_table_chunks",
		SQL: `CREATE TABLE IF NOT EXISTS chunks (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_id      UUID        NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
  chunk_index      INTEGER     NOT NULL,
  text             TEXT        NOT NULL,
  text_length      INTEGER     NOT NULL,
  token_count      INTEGER     NOT NULL,
  chunk_type       TEXT        NOT NULL DEFAULT 'fixed',
  element_category TEXT,
  source_page      INTEGER,
  source_section   TEXT,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (document_id, chunk_index)
);`,
	},
	{
		Name: "create_index_chunks_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks (document_id);`,
	},
	{
		Name: "create_table_api_keys",
		SQL: `CREATE TABLE IF NOT EXISTS api_keys (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id        UUID        REFERENCES users(id) ON DELETE CASCADE,
  name           TEXT        NOT NULL,
  key_hash       TEXT        NOT NULL UNIQUE,
  key_prefix     TEXT        NOT NULL,
  status         TEXT        NOT NULL DEFAULT 'active',
  rate_limit_rpm INTEGER     NOT NULL DEFAULT 60,
  rate_limit_rpd INTEGER     NOT NULL DEFAULT 10000,
  request_count  BIGINT      NOT NULL DEFAULT 0,
  last_used_at   TIMESTAMPTZ,
  expires_at     TIMESTAMPTZ,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_api_keys_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_api_keys_user_id ON api_keys (user_id);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
