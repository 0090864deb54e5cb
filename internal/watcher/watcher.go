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

package watcher

import (
	"context"
	"fmt"
	"time"

	"trokazz-server/internal/models"
	"trokazz-server/internal/store"

	"go.uber.org/zap"
)

// Notifier delivers a stored notification to the affected user.
type Notifier interface {
	Notify(ctx context.Context, userId, notifType, message, link string)
}

// ExpiryWatcher polls for approved ads nearing expiry and warns their owners
// once. The pre-expiry flag on the ad keeps the warning idempotent across
// sweeps and restarts.
type ExpiryWatcher struct {
	store           store.Store
	notifier        Notifier
	pollingInterval time.Duration
	warningWindow   time.Duration

	stopChan chan struct{}
	doneChan chan struct{}
}

func NewExpiryWatcher(st store.Store, notifier Notifier, cfg models.WatcherConfig) (*ExpiryWatcher, error) {
	if cfg.PollingInterval <= 0 {
		return nil, fmt.Errorf("polling interval must be positive, got %v", cfg.PollingInterval)
	}
	if cfg.WarningWindow <= 0 {
		return nil, fmt.Errorf("warning window must be positive, got %v", cfg.WarningWindow)
	}
	return &ExpiryWatcher{
		store:           st,
		notifier:        notifier,
		pollingInterval: cfg.PollingInterval,
		warningWindow:   cfg.WarningWindow,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}, nil
}

// Start begins the expiry monitoring process.
func (w *ExpiryWatcher) Start(ctx context.Context) {
	go w.pollLoop(ctx)
	zap.L().Info("Expiry watcher started",
		zap.Duration("polling_interval", w.pollingInterval),
		zap.Duration("warning_window", w.warningWindow))
}

// Stop gracefully stops the expiry watcher.
func (w *ExpiryWatcher) Stop() {
	zap.L().Info("Stopping expiry watcher")
	close(w.stopChan)
	<-w.doneChan
	zap.L().Info("Expiry watcher stopped")
}

func (w *ExpiryWatcher) pollLoop(ctx context.Context) {
	defer close(w.doneChan)

	ticker := time.NewTicker(w.pollingInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep warns the owner of every approved ad expiring inside the window that
// has not been warned yet.
func (w *ExpiryWatcher) sweep(ctx context.Context) {
	ads, err := w.store.ListAdsExpiringWithin(ctx, w.warningWindow)
	if err != nil {
		zap.L().Error("Expiry sweep failed", zap.Error(err))
		return
	}
	if len(ads) == 0 {
		return
	}

	warned := 0
	for _, ad := range ads {
		if ad.ExpiresAt == nil {
			continue
		}
		daysLeft := int(time.Until(*ad.ExpiresAt).Hours() / 24)
		if daysLeft < 0 {
			daysLeft = 0
		}

		w.notifier.Notify(ctx, ad.UserId, models.NotifAdExpiring,
			fmt.Sprintf("Your ad %q expires in %d days. Renew it to keep it live.", ad.Title, daysLeft),
			"/ads/"+ad.Id)

		if err := w.store.MarkPreExpiryNotified(ctx, ad.Id); err != nil {
			zap.L().Error("Failed to mark pre-expiry warning",
				zap.String("ad_id", ad.Id), zap.Error(err))
			continue
		}
		warned++
	}

	zap.L().Info("Expiry sweep completed",
		zap.Int("candidates", len(ads)),
		zap.Int("warned", warned))
}
