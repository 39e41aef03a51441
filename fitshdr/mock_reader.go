/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package fitshdr

import (
	"github.com/stretchr/testify/mock"
)

// MockReader mock implementation of a header Reader
type MockReader struct {
	mock.Mock
}

// Read mock
func (m *MockReader) Read(path string) (*Header, error) {
	args := m.Called(path)
	h, _ := args.Get(0).(*Header)
	return h, args.Error(1)
}
