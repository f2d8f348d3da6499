// Copyright 2026 Vitae Works
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


package openai

import "regexp"

var (
	// `,}` or `,]` with optional whitespace between
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

	// bare key after { or , : `{title:` -> `{"title":`
	unquotedKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// repairJSON attempts to fix common JSON formatting issues from LLM
// responses: trailing commas before closing braces/brackets and unquoted
// object keys. It never touches the inside of string values that do not
// resemble those patterns, which is good enough for schema-constrained
// output.
func repairJSON(s string) string {
	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2":`)
	return s
}
