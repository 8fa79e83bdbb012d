// Copyright 2022 Sogang University
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

//go:generate protoc --proto_path=proto/ --go-grpc_out=sampler/ --go-grpc_opt=paths=source_relative sampler.proto

// Package main implements the sampler server. The initialization and
// termination of the server may be invoked by the data loader, and the
// dataset to sample is either described by the data loader or loaded from a
// data module at startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/9rum/dlcm/internal/config"
	"github.com/9rum/dlcm/internal/data"
	"github.com/9rum/dlcm/sampler"
	"github.com/golang/glog"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	port := flag.Int("p", 50051, "The server port")
	metricsAddr := flag.String("metrics", ":9090", "The address to expose metrics on, empty to disable")
	configPath := flag.String("config", "", "The data module to load at startup")
	flag.Parse()

	factory := data.NewFactory(nil, nil, nil)
	if *configPath != "" {
		if err := load(*configPath, factory); err != nil {
			glog.Fatalf("failed to load data module: %v", err)
		}
	}

	if err := serve(*port, *metricsAddr, factory); err != nil {
		glog.Fatalf("failed to serve: %v", err)
	}
}

// load builds the datasets of the data module at the given path.
func load(path string, factory *data.Factory) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	module, err := config.Load(f)
	if err != nil {
		return err
	}
	datasets, err := module.Build(factory)
	if err != nil {
		return err
	}
	glog.Infof("loaded %d datasets from %s", len(datasets), path)
	return nil
}

func serve(port int, metricsAddr string, factory *data.Factory) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server := newServer(factory, reg)
	glog.Infof("server listening at %v", lis.Addr())

	g, ctx := errgroup.WithContext(context.Background())
	stopped := make(chan struct{})

	var metrics *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metrics = &http.Server{Addr: metricsAddr, Handler: mux}

		g.Go(func() error {
			glog.Infof("metrics listening at %s", metricsAddr)
			if err := metrics.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(stopped)
		defer func() {
			if metrics != nil {
				metrics.Shutdown(context.Background())
			}
		}()
		return server.Serve(lis)
	})

	// a failed metrics endpoint takes the sampler server down with it
	g.Go(func() error {
		select {
		case <-ctx.Done():
			server.Stop()
		case <-stopped:
		}
		return nil
	})

	return g.Wait()
}

func newServer(factory *data.Factory, reg prometheus.Registerer) *grpc.Server {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_recovery.UnaryServerInterceptor(),
		),
	)
	done := make(chan os.Signal, 1)

	go func(done <-chan os.Signal, server *grpc.Server) {
		<-done
		server.GracefulStop()
	}(done, server)

	sampler.RegisterSamplerServer(server, sampler.NewSamplerServer(done, factory, reg))

	return server
}
