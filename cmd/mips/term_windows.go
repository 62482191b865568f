// This file is part of mips - https://github.com/ge42dal/MIPS
//
// Copyright 2025 The mips authors
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

import "github.com/pkg/errors"

// setRawIO is not supported on Windows: it always returns an error and
// no restore function, so stdin stays as it is.
func setRawIO() (func(), error) {
	return nil, errors.New("raw IO not supported")
}
