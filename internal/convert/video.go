package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
	"github.com/standardbeagle/docvault/internal/types"
)

// ffprobeFormat is the subset of ffprobe's JSON output this handler
// reads.
type ffprobeFormat struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
		FormatName string `json:"format_name"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// NewVideoHandler shells out to ffprobe (part of the ffmpeg toolchain)
// to read container metadata and renders it as a Markdown fact sheet
// (VIDEO_METADATA, spec.md §4.4). docvault never decodes or transcodes
// video frames — only metadata is extracted, matching the conversion
// tag's name.
func NewVideoHandler() Handler {
	return HandlerFunc(func(ctx context.Context, meta types.FileMeta) Result {
		info, err := probeVideo(ctx, meta.FilePath)
		if err != nil {
			return Result{Success: false, Err: dverrors.NewIngestError(dverrors.ErrorTypeHandlerFailure, "video_probe", err).WithFile(meta.FilePath).WithRecoverable(true)}
		}

		content := renderVideoMeta(info)
		return Result{Content: content, Tag: types.ConversionVideoMetadata, Success: true}
	})
}

func probeVideo(ctx context.Context, path string) (*ffprobeFormat, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	var info ffprobeFormat
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("ffprobe output: %w", err)
	}
	return &info, nil
}

func renderVideoMeta(info *ffprobeFormat) string {
	var video struct {
		codec         string
		width, height int
	}
	for _, s := range info.Streams {
		if s.CodecType == "video" {
			video.codec = s.CodecName
			video.width = s.Width
			video.height = s.Height
			break
		}
	}

	return fmt.Sprintf(
		"# Video metadata\n\n"+
			"- Container: %s\n"+
			"- Duration: %s seconds\n"+
			"- Size: %s bytes\n"+
			"- Video codec: %s\n"+
			"- Resolution: %dx%d\n",
		info.Format.FormatName, info.Format.Duration, info.Format.Size,
		video.codec, video.width, video.height,
	)
}
