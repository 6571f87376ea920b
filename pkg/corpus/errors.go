// Copyright 2026 The Sloop Authors
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

package corpus

import "fmt"

// MalformedRecordError is raised only when a line's top-level JSON parse
// fails; individual bad-but-parseable records are logged and skipped
// instead of failing the whole load.
type MalformedRecordError struct {
	Line   int
	Offset int
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("corpus: malformed record at line %d: %v", e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
