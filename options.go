// Copyright 2025 The Swisstable Authors
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

package swiss

import "fmt"

type config[K comparable] struct {
	hash    HashFunc[K]
	matcher GroupMatcher
}

// Option configures a Map or Set while it is being created.
type Option[K comparable] func(*config[K])

// WithHashFunc overrides the hash function used for keys of type K. The
// default is the runtime's maphash with a random per-table seed.
func WithHashFunc[K comparable](hash HashFunc[K]) Option[K] {
	return func(cfg *config[K]) {
		cfg.hash = hash
	}
}

// WithMatcher overrides the group matching backend. The default is
// SWARMatcher; PortableMatcher is the reference implementation. Any
// backend must produce masks identical to PortableMatcher.
func WithMatcher[K comparable](matcher GroupMatcher) Option[K] {
	return func(cfg *config[K]) {
		cfg.matcher = matcher
	}
}

func newConfig[K comparable](initialCapacity int, opts []Option[K]) (config[K], error) {
	if initialCapacity < 0 {
		return config[K]{}, fmt.Errorf("swiss: invalid initial capacity %d", initialCapacity)
	}
	var cfg config[K]
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hash == nil {
		cfg.hash = defaultHashFunc[K]()
	}
	if cfg.matcher == nil {
		cfg.matcher = SWARMatcher{}
	}
	return cfg, nil
}
