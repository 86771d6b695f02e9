/*
 * MIT License
 *
 * Copyright (c) 2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/tochemey/reqcache"
	"github.com/tochemey/reqcache/admin"
	"github.com/tochemey/reqcache/log"
)

func main() {
	ctx := context.Background()
	logger := log.New(log.DebugLevel, os.Stdout)

	// declare the logical data domains of the dashboard
	cacheTypes := []reqcache.CacheTypeConfig{
		{
			Name:    "metrics",
			TTL:     2 * time.Minute,
			MaxSize: 50,
		},
		{
			Name:                 "ranking",
			TTL:                  5 * time.Minute,
			MaxSize:              20,
			AutoActivate:         true,
			PerformanceThreshold: 500 * time.Millisecond,
			UsageThreshold:       3,
		},
	}

	config := reqcache.NewConfig(cacheTypes,
		reqcache.WithLogger(logger),
		reqcache.WithAdminConfig(&admin.Config{ListenAddr: "127.0.0.1:8099"}),
	)

	engine, err := reqcache.NewEngine(config)
	if err != nil {
		logger.Fatal(err)
	}

	if err := engine.Start(ctx); err != nil {
		logger.Fatal(err)
	}

	// a producer stands in for one ticketing API endpoint
	fetchMetrics := func(ctx context.Context) (any, error) {
		time.Sleep(time.Duration(50+rand.Intn(200)) * time.Millisecond)
		return map[string]int{"open": rand.Intn(100), "closed": rand.Intn(500)}, nil
	}

	// user-triggered fetches and scheduled refreshes share dedup state
	value, err := engine.Coordinate(ctx, "metrics", "tickets-overview", fetchMetrics)
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infof("metrics: %v", value)

	// a ticket change invalidates every cached metrics entry
	engine.Invalidation().AddRule(reqcache.InvalidationRule{
		EventType:  "ticket.updated",
		Pattern:    regexp.MustCompile("^tickets-"),
		CacheTypes: []string{"metrics", "ranking"},
		Priority:   reqcache.PriorityHigh,
		Debounce:   200 * time.Millisecond,
	})
	engine.Invalidation().Trigger("ticket.updated", map[string]int{"id": 42}, "example")

	// refresh the overview every 30s while the user is idle
	unregister, err := engine.Refresh().Register(reqcache.RefresherConfig{
		Key:       "tickets-overview",
		Fn:        fetchMetrics,
		CacheType: "metrics",
		Interval:  30 * time.Second,
		MinIdle:   10 * time.Second,
		Enabled:   true,
	})
	if err != nil {
		logger.Fatal(err)
	}
	defer unregister()

	logger.Infof("admin endpoints on http://127.0.0.1:8099/_reqcache/admin/cachetypes")
	fmt.Println(engine.Monitor().Stats())

	// wait for interruption/termination
	notifier := make(chan os.Signal, 1)
	signal.Notify(notifier, syscall.SIGINT, syscall.SIGTERM)
	sig := <-notifier
	logger.Infof("received an interrupt signal (%s) to shutdown", sig.String())
	signal.Stop(notifier)

	_ = engine.Stop(ctx)
}
