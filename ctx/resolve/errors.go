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

import (
	"github.com/kintsu-lang/kintsu/core"
	"github.com/kintsu-lang/kintsu/token"
)

// phase7ResolveErrorTypes resolves the error type for every fallible
// operation, from item-level #[err(E)] or namespace-level #![err(E)]; a
// fallible operation with neither is MissingErrorType (spec §4.6 Phase 7).
func (r *resolver) phase7ResolveErrorTypes() error {
	for _, name := range r.order {
		st := r.items[name]

		if st.kind != KOperation || !st.fallible {
			continue
		}

		var ref core.NamedItemContext

		switch {
		case st.errAttr != "":
			ref = core.NewNamedItemContext(r.ref, st.errAttr)
		case r.ns.ErrType != nil:
			ref = *r.ns.ErrType
		default:
			return token.NewPosError(token.KindResolution, st.span,
				"operation "+name+" is fallible but has no resolvable error type").
				SetHint("add #[err(E)] on the operation or #![err(E)] on the namespace")
		}

		r.result.ResolvedErrors[name] = ref
	}

	return nil
}
