package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	appconfig "github.com/inetops/fleetwatch/internal/config"
)

func TestClient(t *testing.T) {
	Convey("Given an inventory API client", t, func() {
		ctx := context.Background()

		newClient := func(baseURL string) *Client {
			return NewClient(&appconfig.InventoryConfig{
				BaseURL:     baseURL,
				DevicesPath: "/devices",
				Timeout:     5 * time.Second,
			})
		}

		Convey("When the API returns a bare device list", func() {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`[{"hostname":"r1","vendor":"cisco","device_class":"router"}]`))
			}))
			defer srv.Close()

			devices, err := newClient(srv.URL).FetchDevices(ctx)

			Convey("It should decode the devices", func() {
				So(gotPath, ShouldEqual, "/devices")
				So(err, ShouldBeNil)
				So(len(devices), ShouldEqual, 1)
				So(devices[0].Hostname, ShouldEqual, "r1")
				So(devices[0].DeviceClass, ShouldEqual, "router")
			})
		})

		Convey("When the API wraps the list in a devices field", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"devices":[{"hostname":"r1"},{"hostname":"r2"}]}`))
			}))
			defer srv.Close()

			devices, err := newClient(srv.URL).FetchDevices(ctx)

			Convey("It should decode the wrapped devices", func() {
				So(err, ShouldBeNil)
				So(len(devices), ShouldEqual, 2)
			})
		})

		Convey("When the API returns a server error", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).FetchDevices(ctx)

			Convey("It should fail with the status", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "502")
			})
		})

		Convey("When the API returns malformed JSON", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{devices`))
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).FetchDevices(ctx)

			Convey("It should fail decoding", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "decode device list")
			})
		})
	})
}

func TestFileSource(t *testing.T) {
	Convey("Given a file-based inventory source", t, func() {
		ctx := context.Background()
		tempDir, err := os.MkdirTemp("", "inventory_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		Convey("When the file holds a device list", func() {
			path := filepath.Join(tempDir, "data.json")
			err := os.WriteFile(path, []byte(`[{"hostname":"r1","ip":"10.0.0.1"}]`), 0644)
			So(err, ShouldBeNil)

			devices, err := NewFileSource(path).FetchDevices(ctx)

			Convey("It should decode the devices", func() {
				So(err, ShouldBeNil)
				So(len(devices), ShouldEqual, 1)
				So(devices[0].IP, ShouldEqual, "10.0.0.1")
			})
		})

		Convey("When the file does not exist", func() {
			_, err := NewFileSource(filepath.Join(tempDir, "missing.json")).FetchDevices(ctx)

			Convey("It should fail reading", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "read inventory file")
			})
		})
	})
}
