package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/highscore-board/internal/config"
	"github.com/highscore-board/internal/logging"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewWithWriter(t *testing.T) {
	Convey("Given a JSON logger at warn level", t, func() {
		var buf bytes.Buffer
		logger := logging.NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "json"})

		Convey("Info lines are dropped", func() {
			logger.Info("ignored")
			So(buf.Len(), ShouldEqual, 0)
		})

		Convey("Warn lines are written as JSON", func() {
			logger.Warn("slow store", "op", "load")
			var line map[string]any
			So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
			So(line["msg"], ShouldEqual, "slow store")
			So(line["op"], ShouldEqual, "load")
		})
	})

	Convey("Given a text logger", t, func() {
		var buf bytes.Buffer
		logger := logging.NewWithWriter(&buf, config.LogConfig{Level: "debug", Format: "text"})
		logger.Debug("hello", "id", 1)

		Convey("The line is human readable", func() {
			So(buf.String(), ShouldContainSubstring, "hello")
			So(json.Valid(buf.Bytes()), ShouldBeFalse)
		})
	})
}

func TestParseLevel(t *testing.T) {
	Convey("Level names map to slog levels", t, func() {
		So(logging.ParseLevel("DEBUG"), ShouldEqual, slog.LevelDebug)
		So(logging.ParseLevel("warning"), ShouldEqual, slog.LevelWarn)
		So(logging.ParseLevel("error"), ShouldEqual, slog.LevelError)
		So(logging.ParseLevel(""), ShouldEqual, slog.LevelInfo)
		So(logging.ParseLevel("verbose"), ShouldEqual, slog.LevelInfo)
	})
}
