package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderVideoMetaFormatsFactSheet(t *testing.T) {
	info := &ffprobeFormat{}
	info.Format.FormatName = "mov,mp4,m4a,3gp,3g2,mj2"
	info.Format.Duration = "12.5"
	info.Format.Size = "1048576"
	info.Streams = []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	}{
		{CodecType: "audio", CodecName: "aac"},
		{CodecType: "video", CodecName: "h264", Width: 1920, Height: 1080},
	}

	content := renderVideoMeta(info)

	assert.Contains(t, content, "# Video metadata")
	assert.Contains(t, content, "Duration: 12.5 seconds")
	assert.Contains(t, content, "Size: 1048576 bytes")
	assert.Contains(t, content, "Video codec: h264")
	assert.Contains(t, content, "Resolution: 1920x1080")
}

func TestRenderVideoMetaSkipsAudioOnlyStreams(t *testing.T) {
	info := &ffprobeFormat{}
	info.Streams = []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	}{
		{CodecType: "audio", CodecName: "mp3"},
	}

	content := renderVideoMeta(info)
	assert.Contains(t, content, "Video codec: \n")
}

// probeVideo shells out to the ffprobe binary from the ffmpeg toolchain;
// exercising it end to end requires that binary on PATH, matching the
// teacher's own pattern of not unit-testing os/exec-wrapped external
// tools directly.
