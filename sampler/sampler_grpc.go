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

package sampler

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/9rum/dlcm/internal/data"
	"github.com/golang/glog"
	"github.com/golang/protobuf/ptypes/empty"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/exp/constraints"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// metrics counts the sampled batches.
type metrics struct {
	batches *prometheus.CounterVec
	samples prometheus.Counter
	epochs  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dlcm",
			Subsystem: "sampler",
			Name:      "batches_total",
			Help:      "Total number of batches sampled, by source dataset.",
		}, []string{"source"}),
		samples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dlcm",
			Subsystem: "sampler",
			Name:      "samples_total",
			Help:      "Total number of indices sampled.",
		}),
		epochs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dlcm",
			Subsystem: "sampler",
			Name:      "epochs_total",
			Help:      "Total number of completed epochs.",
		}),
	}
}

// samplerServer implements the server API for Sampler service.
type samplerServer struct {
	UnimplementedSamplerServer
	mu      sync.Mutex
	sampler *HeteroDatasetsBatchSampler
	factory *data.Factory
	metrics *metrics
	done    chan<- os.Signal
}

// NewSamplerServer creates a new sampler server.  Datasets given to Init are
// created through factory, and the sampler metrics are registered on reg.
func NewSamplerServer(done chan<- os.Signal, factory *data.Factory, reg prometheus.Registerer) SamplerServer {
	return &samplerServer{
		factory: factory,
		metrics: newMetrics(reg),
		done:    done,
	}
}

// arguments are the arguments of Init.
type arguments struct {
	Dataset              map[string]any `mapstructure:"dataset"`
	DatasetReferenceName string         `mapstructure:"dataset_reference_name"`
	BatchSizes           []int          `mapstructure:"batch_sizes"`
	Shuffle              bool           `mapstructure:"shuffle"`
	DropLast             bool           `mapstructure:"drop_last"`
	Seed                 int64          `mapstructure:"seed"`
}

// Init initializes the training environment.  The dataset is either described
// by a descriptor or referred to by the name of a loaded dataset.
func (s *samplerServer) Init(ctx context.Context, in *structpb.Struct) (*empty.Empty, error) {
	var args arguments
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &args,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if err = decoder.Decode(in.AsMap()); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	glog.Infof("Init called with dataset: %q batch sizes: %v shuffle: %t drop last: %t", args.DatasetReferenceName, args.BatchSizes, args.Shuffle, args.DropLast)

	if args.Dataset != nil && args.DatasetReferenceName != "" {
		return nil, status.Error(codes.InvalidArgument, "dataset and dataset_reference_name are mutually exclusive")
	}

	// datasets described by the call are kept only if a sampler is built over them
	var sampler *HeteroDatasetsBatchSampler
	err = s.factory.Atomic(func(tx *data.Factory) error {
		var dataset data.Dataset
		if args.Dataset != nil {
			if dataset, err = tx.Create(args.Dataset); err != nil {
				return toStatus(err)
			}
		} else {
			var ok bool
			if dataset, ok = tx.Registry().Lookup(args.DatasetReferenceName); !ok {
				return status.Errorf(codes.NotFound, "dataset %q is not loaded", args.DatasetReferenceName)
			}
		}
		if sampler, err = NewHeteroDatasetsBatchSampler(dataset, args.BatchSizes, args.Shuffle, args.DropLast, args.Seed); err != nil {
			return toStatus(err)
		}
		return nil
	})
	if err != nil {
		if _, ok := status.FromError(err); !ok {
			err = toStatus(err)
		}
		return nil, err
	}

	s.mu.Lock()
	s.sampler = sampler
	s.mu.Unlock()

	return new(empty.Empty), nil
}

// current returns the sampler set by Init.
func (s *samplerServer) current() (*HeteroDatasetsBatchSampler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sampler == nil {
		return nil, status.Error(codes.FailedPrecondition, "sampler is not initialized")
	}
	return s.sampler, nil
}

// Len returns the number of full batches per epoch.
func (s *samplerServer) Len(ctx context.Context, in *empty.Empty) (*wrapperspb.Int64Value, error) {
	sampler, err := s.current()
	if err != nil {
		return nil, err
	}
	return wrapperspb.Int64(int64(sampler.Len())), nil
}

// Sample returns the next batch of the current epoch, or an empty list once
// the epoch is exhausted.
func (s *samplerServer) Sample(ctx context.Context, in *empty.Empty) (*structpb.ListValue, error) {
	sampler, err := s.current()
	if err != nil {
		return nil, err
	}

	batch := sampler.Sample()
	if 0 < len(batch) {
		s.metrics.batches.WithLabelValues(strconv.Itoa(sampler.Source(batch[0]))).Inc()
		s.metrics.samples.Add(float64(len(batch)))
	}

	values := make([]*structpb.Value, 0, len(batch))
	for _, index := range cast[int, int64](batch) {
		values = append(values, structpb.NewNumberValue(float64(index)))
	}
	return &structpb.ListValue{Values: values}, nil
}

// cast casts the given slice.
func cast[T, U constraints.Integer](slice []T) []U {
	out := make([]U, len(slice))
	for index, v := range slice {
		out[index] = U(v)
	}
	return out
}

// Reset is called at the end of an epoch during training. It resets the
// sampler for the next training epoch, seeded with the given epoch.
func (s *samplerServer) Reset(ctx context.Context, in *wrapperspb.Int64Value) (*empty.Empty, error) {
	glog.Infof("Reset called with epoch: %d", in.GetValue())

	sampler, err := s.current()
	if err != nil {
		return nil, err
	}
	sampler.OnEpochEnd(in.GetValue())
	s.metrics.epochs.Inc()

	return new(empty.Empty), nil
}

// Finalize terminates the training environment.
func (s *samplerServer) Finalize(ctx context.Context, in *empty.Empty) (*empty.Empty, error) {
	defer func() {
		signal.Notify(s.done, syscall.SIGTERM)
		close(s.done)
	}()

	glog.Info("Finalize called")
	defer glog.Flush()

	s.mu.Lock()
	if s.sampler != nil {
		s.sampler.OnTrainEnd()
		s.sampler = nil
	}
	s.mu.Unlock()

	return new(empty.Empty), nil
}

// toStatus maps engine errors to gRPC status errors.
func toStatus(err error) error {
	switch {
	case errors.Is(err, data.ErrUnknownName):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, data.ErrIndexOutOfRange),
		errors.Is(err, data.ErrInvalidBounds),
		errors.Is(err, data.ErrLengthMismatch),
		errors.Is(err, data.ErrTypeMismatch),
		errors.Is(err, data.ErrDuplicateReferenceName):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
