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

package s3

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/defaults"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/greenmaskio/dumpinsert/internal/storages"
)

const (
	awsErrorCodeNotFount  = "NotFound"
	awsErrorCodeNoSuchKey = "NoSuchKey"
)

type Storage struct {
	config   *Config
	session  *session.Session
	service  s3iface.S3API
	uploader s3manageriface.UploaderAPI
	prefix   string
}

func NewStorage(ctx context.Context, cfg *Config, logLevel string) (*Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid s3 storage config: %w", err)
	}

	ses, err := session.NewSession()
	if err != nil {
		return nil, fmt.Errorf("cannot establish session: %w", err)
	}

	awsCfg := aws.NewConfig()
	awsCfg.WithS3ForcePathStyle(cfg.ForcePathStyle)
	awsCfg.WithS3UseAccelerate(cfg.UseAccelerate)
	request.WithRetryer(awsCfg, client.DefaultRetryer{NumMaxRetries: cfg.MaxRetries})

	accessKeyID := cfg.AccessKeyId
	secretAccessKey := cfg.SecretAccessKey
	sessionToken := cfg.SessionToken

	if cfg.RoleArn != "" {
		ss := sts.New(ses)
		role, err := ss.AssumeRoleWithContext(
			ctx,
			&sts.AssumeRoleInput{
				RoleArn:         aws.String(cfg.RoleArn),
				RoleSessionName: aws.String(cfg.SessionName),
			},
		)
		if err != nil {
			return nil, fmt.Errorf("unable to perform role assuming: %w", err)
		}
		accessKeyID = *role.Credentials.AccessKeyId
		secretAccessKey = *role.Credentials.SecretAccessKey
		sessionToken = *role.Credentials.SessionToken
	}

	if secretAccessKey != "" && accessKeyID != "" {
		sp := &credentials.StaticProvider{
			Value: credentials.Value{
				AccessKeyID:     accessKeyID,
				SecretAccessKey: secretAccessKey,
				SessionToken:    sessionToken,
			},
		}
		cps := defaults.CredProviders(awsCfg, defaults.Handlers())

		var providers []credentials.Provider
		providers = append(providers, sp)
		providers = append(providers, cps...)

		creds := credentials.NewCredentials(&credentials.ChainProvider{
			VerboseErrors: aws.BoolValue(awsCfg.CredentialsChainVerboseErrors),
			Providers:     providers,
		})
		awsCfg.WithCredentials(creds)
	}

	var lv aws.LogLevelType
	switch logLevel {
	case zerolog.LevelDebugValue:
		lv = aws.LogDebug | aws.LogDebugWithRequestErrors | aws.LogDebugWithRequestRetries
	default:
		lv = aws.LogOff
	}
	awsCfg.WithLogger(LogWrapper{logger: &log.Logger})
	awsCfg.WithLogLevel(lv)

	if cfg.NoVerifySsl {
		tr := &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
		awsCfg.WithHTTPClient(&http.Client{Transport: tr})
	}

	if cfg.Endpoint != "" {
		awsCfg.WithEndpoint(cfg.Endpoint)
	}

	if cfg.Region != "" {
		awsCfg.WithRegion(cfg.Region)
	}

	if cfg.CertFile != "" {
		file, err := os.Open(cfg.CertFile)
		if err != nil {
			return nil, fmt.Errorf("cannot open cert file: %w", err)
		}
		defer file.Close()
		ses, err = session.NewSessionWithOptions(session.Options{Config: *ses.Config, CustomCABundle: file})
		if err != nil {
			return nil, fmt.Errorf("cannot establish session using provided certFile: %w", err)
		}
	}

	service := s3.New(ses, awsCfg)
	uploader := s3manager.NewUploaderWithClient(
		service, func(uploader *s3manager.Uploader) {
			uploader.PartSize = cfg.MaxPartSize
			if cfg.Concurrency > 0 {
				uploader.Concurrency = cfg.Concurrency
			}
		},
	)

	log.Debug().
		Str("region", aws.StringValue(service.Config.Region)).
		Str("bucket", cfg.Bucket).
		Msg("s3 storage bucket")

	return &Storage{
		prefix:   fixPrefix(cfg.Prefix),
		session:  ses,
		config:   cfg,
		service:  service,
		uploader: uploader,
	}, nil
}

func (s *Storage) GetCwd() string {
	return s.prefix
}

func (s *Storage) GetObject(ctx context.Context, filePath string) (io.ReadCloser, error) {
	obj, err := s.service.GetObjectWithContext(
		ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.config.Bucket),
			Key:    aws.String(path.Join(s.prefix, filePath)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("error getting object: %w", err)
	}
	return obj.Body, nil
}

func (s *Storage) PutObject(ctx context.Context, filePath string, body io.Reader) error {
	ui := &s3manager.UploadInput{
		Bucket:       aws.String(s.config.Bucket),
		Key:          aws.String(path.Join(s.prefix, filePath)),
		Body:         body,
		StorageClass: aws.String(s.config.StorageClass),
	}

	if _, err := s.uploader.UploadWithContext(ctx, ui); err != nil {
		return fmt.Errorf("s3 object uploading error: %w", err)
	}
	return nil
}

func (s *Storage) Exists(ctx context.Context, fileName string) (bool, error) {
	hoi := &s3.HeadObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(path.Join(s.prefix, fileName)),
	}

	_, err := s.service.HeadObjectWithContext(ctx, hoi)
	if err != nil {
		var awsErr awserr.Error
		if errors.As(err, &awsErr) && (awsErr.Code() == awsErrorCodeNotFount || awsErr.Code() == awsErrorCodeNoSuchKey) {
			return false, nil
		}
		return false, fmt.Errorf("error getting object info: %w", err)
	}
	return true, nil
}

func (s *Storage) SubStorage(subPath string, relative bool) storages.Storager {
	prefix := subPath
	if relative {
		prefix = fixPrefix(path.Join(s.prefix, prefix))
	}
	return &Storage{
		config:   s.config,
		session:  s.session,
		service:  s.service,
		uploader: s.uploader,
		prefix:   prefix,
	}
}

func fixPrefix(prefix string) string {
	if prefix != "" && prefix[len(prefix)-1] != '/' {
		prefix = prefix + "/"
	}
	return prefix
}
