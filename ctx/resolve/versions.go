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

package resolve

// phase6ResolveVersions computes the effective version for every item:
// item-level #[version(N)], else namespace-level #![version(N)], else the
// default 1 (spec §4.6 Phase 6).
func (r *resolver) phase6ResolveVersions() {
	nsDefault := 1
	if r.ns.Version != nil {
		nsDefault = *r.ns.Version
	}

	for _, name := range r.order {
		st := r.items[name]

		switch {
		case st.versionAttr != nil:
			r.result.ResolvedVersions[name] = *st.versionAttr
		default:
			r.result.ResolvedVersions[name] = nsDefault
		}
	}
}
