// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package output writes board results as NDJSON (Newline Delimited JSON):
// one line per pull request, tagged with the run and the bucket it landed
// in, in bucket order.
//
// Example usage:
//
//	w, err := output.NewFileWriter("board.ndjson")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	if err := output.WriteResult(w, result.ID, result.Buckets); err != nil {
//	    log.Fatal(err)
//	}
package output
