// Copyright 2025 walteh LLC
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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/walteh/rewritesync/pkg/status"
	_ "github.com/walteh/rewritesync/pkg/remote/github"
	_ "github.com/walteh/rewritesync/pkg/remote/s3"
)

func main() {
	// credentials for remote schemes may live in a local .env file
	_ = godotenv.Load()

	root, opts := newRootCmd()
	err := root.ExecuteContext(context.Background())
	if cerr := opts.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		if opts.Logger != nil {
			opts.Logger.LogError(err)
		} else {
			fmt.Fprintln(os.Stderr, status.NewDefaultFormatter().FormatError(err))
		}
		os.Exit(1)
	}
}
