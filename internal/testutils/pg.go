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

package testutils

import (
	"context"
	"fmt"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testContainerDatabase = "testdb"
	testContainerUser     = "testuser"
	testContainerPassword = "testpassword"
)

const (
	pgTestContainerPort        nat.Port = "5432"
	pgTestContainerImage                = "postgres:17"
	pgTestContainerExposedPort          = "5432/tcp"
)

// PgContainerSuite - runs the target database in a container. Migrations are executed once per suite
type PgContainerSuite struct {
	suite.Suite
	Container     testcontainers.Container
	MigrationUp   string
	MigrationDown string
}

func (s *PgContainerSuite) SetupSuite() {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        pgTestContainerImage,
		ExposedPorts: []string{pgTestContainerExposedPort},
		Env: map[string]string{
			"POSTGRES_USER":     testContainerUser,
			"POSTGRES_PASSWORD": testContainerPassword,
			"POSTGRES_DB":       testContainerDatabase,
		},
		WaitingFor: wait.ForSQL(pgTestContainerExposedPort, "pgx", func(host string, port nat.Port) string {
			return dsn(host, port.Port())
		}),
	}

	var err error
	s.Container, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoErrorf(err, "failed to start PostgreSQL Container")

	s.execMigration(ctx, s.MigrationUp)
}

func (s *PgContainerSuite) TearDownSuite() {
	ctx := context.Background()
	s.execMigration(ctx, s.MigrationDown)
	err := s.Container.Terminate(ctx)
	s.Assert().NoErrorf(err, "failed to terminate PostgreSQL Container")
}

func (s *PgContainerSuite) SetMigrationUp(sql string) *PgContainerSuite {
	s.MigrationUp = sql
	return s
}

func (s *PgContainerSuite) SetMigrationDown(sql string) *PgContainerSuite {
	s.MigrationDown = sql
	return s
}

// GetDsn - connection string of the container database
func (s *PgContainerSuite) GetDsn(ctx context.Context) string {
	host, err := s.Container.Host(ctx)
	s.Require().NoErrorf(err, "failed to get Container host")
	port, err := s.Container.MappedPort(ctx, pgTestContainerPort)
	s.Require().NoErrorf(err, "failed to get Container port")
	return dsn(host, port.Port())
}

func (s *PgContainerSuite) GetConnection(ctx context.Context) (*pgx.Conn, error) {
	return pgx.Connect(ctx, s.GetDsn(ctx))
}

func (s *PgContainerSuite) execMigration(ctx context.Context, sql string) {
	if sql == "" {
		return
	}
	conn, err := s.GetConnection(ctx)
	s.Require().NoErrorf(err, "failed to connect to PostgreSQL")
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, sql)
	s.Require().NoErrorf(err, "failed to run migration")
}

func dsn(host, port string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		testContainerUser, testContainerPassword, host, port, testContainerDatabase,
	)
}
