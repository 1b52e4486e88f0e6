// Copyright 2021 Torben Schinke
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compile

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// contentHash computes a stable, deterministic digest over a package's
// source file set and bytes (spec §4.4 step 4): paths are sorted first so
// the hash does not depend on filesystem iteration order, then each path
// and its content, each followed by a NUL byte, are fed through one sha256
// instance.
func contentHash(files map[string][]byte) string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	h := sha256.New()

	for _, p := range paths {
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write(files[p])
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
