package gcp

import (
	"errors"
	"testing"
)

func TestResolveObjectStorageConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mode     string
		host     string
		wantMode ObjectStorageMode
		wantErr  ObjectStorageConfigErrorCode
	}{
		{name: "default local", wantMode: ObjectStorageModeLocal},
		{name: "host implies emulator", host: "http://fake-gcs:4443", wantMode: ObjectStorageModeGCSEmulator},
		{name: "explicit gcs ignores host", mode: "GCS", host: "http://fake-gcs:4443", wantMode: ObjectStorageModeGCS},
		{name: "explicit emulator", mode: "gcs_emulator", host: "http://fake-gcs:4443", wantMode: ObjectStorageModeGCSEmulator},
		{name: "explicit local", mode: "local", wantMode: ObjectStorageModeLocal},
		{name: "invalid mode", mode: "s3", wantErr: ObjectStorageConfigErrorInvalidMode},
		{name: "emulator missing host", mode: "gcs_emulator", wantErr: ObjectStorageConfigErrorMissingEmulatorHost},
		{name: "emulator bad host", mode: "gcs_emulator", host: "fake-gcs:4443", wantErr: ObjectStorageConfigErrorInvalidEmulatorHost},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := ResolveObjectStorageConfig(tc.mode, tc.host)
			if tc.wantErr != "" {
				var cfgErr *ObjectStorageConfigError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("expected ObjectStorageConfigError, got %v", err)
				}
				if cfgErr.Code != tc.wantErr {
					t.Fatalf("code: want=%q got=%q", tc.wantErr, cfgErr.Code)
				}
				if cfgErr.Error() == "" {
					t.Fatalf("expected error message")
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveObjectStorageConfig: %v", err)
			}
			if cfg.Mode != tc.wantMode {
				t.Fatalf("mode: want=%q got=%q", tc.wantMode, cfg.Mode)
			}
		})
	}
}
