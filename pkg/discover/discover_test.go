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

package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	fsys := fstest.MapFS{
		"src/Api/UserController.cs":                  {Data: []byte("a")},
		"src/Api.Tests/UserControllerTests.cs":       {Data: []byte("b")},
		"src/Api.Tests/Services/UserServiceTests.cs": {Data: []byte("c")},
		"src/Api.Tests/bin/Debug/Gen.cs":             {Data: []byte("d")},
		"src/Api.Tests/obj/Gen.cs":                   {Data: []byte("e")},
		"README.md":                                  {Data: []byte("f")},
		".git/HEAD.cs":                               {Data: []byte("g")},
	}

	tests := []struct {
		name    string
		opts    Options
		want    []string
		wantErr string
	}{
		{
			name: "all_cs_minus_defaults",
			opts: Options{Include: []string{"**/*.cs"}},
			want: []string{
				"src/Api.Tests/Services/UserServiceTests.cs",
				"src/Api.Tests/UserControllerTests.cs",
				"src/Api/UserController.cs",
			},
		},
		{
			name: "overlapping_includes_are_deduplicated",
			opts: Options{Include: []string{"**/*Tests.cs", "src/Api.Tests/**/*.cs"}},
			want: []string{
				"src/Api.Tests/Services/UserServiceTests.cs",
				"src/Api.Tests/UserControllerTests.cs",
			},
		},
		{
			name: "custom_exclude",
			opts: Options{Include: []string{"**/*.cs"}, Exclude: []string{"**/Services/**", "src/Api/**"}},
			want: []string{
				".git/HEAD.cs",
				"src/Api.Tests/UserControllerTests.cs",
				"src/Api.Tests/bin/Debug/Gen.cs",
				"src/Api.Tests/obj/Gen.cs",
			},
		},
		{
			name: "no_matches",
			opts: Options{Include: []string{"**/*.go"}},
			want: nil,
		},
		{
			name:    "no_include",
			opts:    Options{},
			wantErr: "include pattern is required",
		},
		{
			name:    "bad_pattern",
			opts:    Options{Include: []string{"[oops"}},
			wantErr: "invalid pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.FS = fsys
			got, err := Paths(context.Background(), tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaths_OnDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b", "x.cs"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "y.cs"), []byte("y"), 0644))

	got, err := Paths(context.Background(), Options{Root: dir, Include: []string{"**/*.cs"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/x.cs", "y.cs"}, got)

	_, err = Paths(context.Background(), Options{Root: filepath.Join(dir, "y.cs"), Include: []string{"*"}})
	assert.ErrorContains(t, err, "not a directory")

	_, err = Paths(context.Background(), Options{Root: filepath.Join(dir, "nope"), Include: []string{"*"}})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
