package cmd

import (
	"testing"

	"cloudpull/internal/transfer"
)

func TestBuildSelection(t *testing.T) {
	bucket := "gs://bucket"

	tests := []struct {
		name       string
		files      []string
		folders    []string
		everything bool
		wantMode   transfer.Mode
		wantPaths  []string
		wantError  bool
	}{
		{"Single file", []string{"a.txt"}, nil, false, transfer.ModeSingleFile, []string{"gs://bucket/a.txt"}, false},
		{"Multiple files", []string{"a.txt", "b.txt"}, nil, false, transfer.ModeMultipleFiles, []string{"gs://bucket/a.txt", "gs://bucket/b.txt"}, false},
		{"Single folder", nil, []string{"backups/"}, false, transfer.ModeSingleFolder, []string{"gs://bucket/backups/"}, false},
		{"Multiple folders", nil, []string{"a/", "b/"}, false, transfer.ModeMultipleFolders, []string{"gs://bucket/a/", "gs://bucket/b/"}, false},
		{"Everything", nil, nil, true, transfer.ModeEverything, nil, false},
		{"Full URL passes through", []string{"gs://other/a.txt"}, nil, false, transfer.ModeSingleFile, []string{"gs://other/a.txt"}, false},
		{"Nothing selected", nil, nil, false, "", nil, true},
		{"Files and folders mixed", []string{"a.txt"}, []string{"b/"}, false, "", nil, true},
		{"Everything plus file", []string{"a.txt"}, nil, true, "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selection, err := buildSelection(bucket, tt.files, tt.folders, tt.everything, nil, nil)
			if tt.wantError {
				if err == nil {
					t.Fatal("buildSelection() expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildSelection() error = %v", err)
			}
			if selection.Mode != tt.wantMode {
				t.Errorf("Mode = %s, want %s", selection.Mode, tt.wantMode)
			}
			if len(selection.Paths) != len(tt.wantPaths) {
				t.Fatalf("Paths = %v, want %v", selection.Paths, tt.wantPaths)
			}
			for i, path := range tt.wantPaths {
				if selection.Paths[i] != path {
					t.Errorf("Paths[%d] = %s, want %s", i, selection.Paths[i], path)
				}
			}
		})
	}
}

func TestBuildSelectionKeepsFilters(t *testing.T) {
	selection, err := buildSelection("gs://bucket", nil, nil, true, []string{"*.csv"}, []string{"tmp*"})
	if err != nil {
		t.Fatalf("buildSelection() error = %v", err)
	}
	if len(selection.Include) != 1 || selection.Include[0] != "*.csv" {
		t.Errorf("Include = %v, want [*.csv]", selection.Include)
	}
	if len(selection.Exclude) != 1 || selection.Exclude[0] != "tmp*" {
		t.Errorf("Exclude = %v, want [tmp*]", selection.Exclude)
	}
}
