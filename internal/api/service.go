/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"fmt"

	"trokazz-server/internal/auth"
	"trokazz-server/internal/config"
	"trokazz-server/internal/models"
	"trokazz-server/internal/store"
)

// Publisher pushes a stored notification to any open realtime subscriptions
// for the user. Delivery is best-effort.
type Publisher interface {
	Publish(userId string, notification models.Notification)
}

// noopPublisher is used when no realtime hub is attached (CLI tools, tests).
type noopPublisher struct{}

func (noopPublisher) Publish(string, models.Notification) {}

// Service implements the marketplace operations on top of the store.
type Service struct {
	store     store.Store
	pricing   *config.Pricing
	auth      *auth.Manager
	publisher Publisher
}

func NewService(st store.Store, pricing *config.Pricing, authManager *auth.Manager) *Service {
	return &Service{
		store:     st,
		pricing:   pricing,
		auth:      authManager,
		publisher: noopPublisher{},
	}
}

// AttachPublisher wires a realtime hub in. Must be called before the service
// starts handling requests.
func (s *Service) AttachPublisher(p Publisher) {
	if p != nil {
		s.publisher = p
	}
}

func (s *Service) HealthCheck(ctx context.Context) error {
	_, err := s.store.GetUsers(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
