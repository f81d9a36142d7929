// Copyright 2025 Greenmask
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package apply

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

var ErrDsnRequired = errors.New("dsn is required")

// Apply - execute the generated script in a single transaction. Any error rolls the transaction back. The script is
// sent using the simple protocol so it may contain several statements
func Apply(ctx context.Context, dsn string, script []byte) error {
	if dsn == "" {
		return ErrDsnRequired
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("unable to connect to the target database: %w", err)
	}
	defer func() {
		if err := conn.Close(ctx); err != nil {
			log.Warn().
				Err(err).
				Msg("error closing connection")
		}
	}()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("unable to start transaction: %w", err)
	}

	startedAt := time.Now()
	if _, err = tx.Exec(ctx, string(script)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Warn().
				Err(rbErr).
				Msg("unable to rollback transaction")
		}
		return fmt.Errorf("unable to apply script: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("unable to commit transaction: %w", err)
	}
	log.Info().
		Dur("Elapsed", time.Since(startedAt)).
		Int("ScriptBytes", len(script)).
		Msg("script applied")
	return nil
}
