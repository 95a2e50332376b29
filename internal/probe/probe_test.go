package probe

import (
	"testing"
	"time"
)

// --- Canned ffprobe JSON fixtures ---

const quickTimeJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "disposition": {"default": 1, "attached_pic": 0},
      "tags": {"creation_time": "2021-06-05T18:30:12.000000Z"}
    },
    {
      "index": 1,
      "codec_type": "audio",
      "disposition": {"default": 1},
      "tags": {"creation_time": "2021-06-05T18:30:12.000000Z"}
    }
  ],
  "format": {
    "filename": "IMG_0042.MOV",
    "duration": "12.345000",
    "tags": {
      "creation_time": "2021-06-05T18:30:12.000000Z",
      "com.apple.quicktime.creationdate": "2021-06-05T14:30:12-0400"
    }
  }
}`

const utcOnlyJSON = `{
  "streams": [
    {"index": 0, "codec_type": "video", "width": 1280, "height": 720, "disposition": {}},
    {"index": 1, "codec_type": "audio", "disposition": {}}
  ],
  "format": {
    "filename": "clip.mp4",
    "tags": {"creation_time": "2020-12-24T20:15:00.000000Z"}
  }
}`

const noTagsJSON = `{
  "streams": [
    {"index": 0, "codec_type": "video", "width": 640, "height": 480, "disposition": {}}
  ],
  "format": {"filename": "old.avi"}
}`

const rotatedJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "disposition": {},
      "side_data_list": [
        {"side_data_type": "Display Matrix", "rotation": -90}
      ],
      "tags": {"creation_time": "2022-03-01T09:00:00.000000Z"}
    },
    {"index": 1, "codec_type": "audio", "disposition": {}}
  ],
  "format": {"tags": {"creation_time": "2022-03-01T09:00:00.000000Z"}}
}`

const coverArtJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_type": "video",
      "width": 600,
      "height": 600,
      "disposition": {"attached_pic": 1}
    },
    {"index": 1, "codec_type": "video", "width": 1920, "height": 1080, "disposition": {}},
    {"index": 2, "codec_type": "audio", "disposition": {}}
  ],
  "format": {"tags": {"creation_time": "2022-07-04T12:00:00.000000Z"}}
}`

// streamTagOnlyJSON has the creation time only on the video stream, not in
// the format section.
const streamTagOnlyJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "disposition": {},
      "tags": {"creation_time": "2019-08-17T07:45:30.000000Z"}
    }
  ],
  "format": {"filename": "cam.mp4"}
}`

// --- Tests ---

func TestParseJSON_PrefersLocalQuickTimeDate(t *testing.T) {
	meta, err := ParseJSON([]byte(quickTimeJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if !meta.HasCreationTime {
		t.Fatal("HasCreationTime = false, want true")
	}
	// com.apple.quicktime.creationdate carries the local zone.
	want := time.Date(2021, 6, 5, 14, 30, 12, 0, time.FixedZone("", -4*3600))
	if !meta.CreationTime.Equal(want) {
		t.Errorf("CreationTime = %v, want %v", meta.CreationTime, want)
	}
	_, offset := meta.CreationTime.Zone()
	if offset != -4*3600 {
		t.Errorf("zone offset = %d, want %d", offset, -4*3600)
	}
	if meta.Width != 1920 || meta.Height != 1080 {
		t.Errorf("dims = %dx%d, want 1920x1080", meta.Width, meta.Height)
	}
	if !meta.HasAudio {
		t.Error("HasAudio = false, want true")
	}
}

func TestParseJSON_FallsBackToCreationTime(t *testing.T) {
	meta, err := ParseJSON([]byte(utcOnlyJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	want := time.Date(2020, 12, 24, 20, 15, 0, 0, time.UTC)
	if !meta.HasCreationTime || !meta.CreationTime.Equal(want) {
		t.Errorf("CreationTime = %v (has=%v), want %v", meta.CreationTime, meta.HasCreationTime, want)
	}
}

func TestParseJSON_StreamTagFallback(t *testing.T) {
	meta, err := ParseJSON([]byte(streamTagOnlyJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	want := time.Date(2019, 8, 17, 7, 45, 30, 0, time.UTC)
	if !meta.HasCreationTime || !meta.CreationTime.Equal(want) {
		t.Errorf("CreationTime = %v (has=%v), want %v", meta.CreationTime, meta.HasCreationTime, want)
	}
}

func TestParseJSON_NoCreationTime(t *testing.T) {
	meta, err := ParseJSON([]byte(noTagsJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if meta.HasCreationTime {
		t.Error("HasCreationTime = true, want false")
	}
	if meta.HasAudio {
		t.Error("HasAudio = true, want false (no audio stream)")
	}
	if meta.Width != 640 || meta.Height != 480 {
		t.Errorf("dims = %dx%d, want 640x480", meta.Width, meta.Height)
	}
}

func TestParseJSON_Rotation(t *testing.T) {
	meta, err := ParseJSON([]byte(rotatedJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if meta.Rotation != 270 {
		t.Errorf("Rotation = %d, want 270 (-90 normalized)", meta.Rotation)
	}
	w, h := meta.DisplayDims()
	if w != 1080 || h != 1920 {
		t.Errorf("DisplayDims = %dx%d, want 1080x1920", w, h)
	}
}

func TestParseJSON_SkipsCoverArt(t *testing.T) {
	meta, err := ParseJSON([]byte(coverArtJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if meta.Width != 1920 || meta.Height != 1080 {
		t.Errorf("dims = %dx%d, want 1920x1080 (attached_pic skipped)", meta.Width, meta.Height)
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	if _, err := ParseJSON([]byte("not json")); err == nil {
		t.Error("ParseJSON should fail on malformed input")
	}
}

func TestParseCreationTime_Layouts(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"rfc3339 nano utc", "2021-06-05T18:30:12.000000Z", false},
		{"rfc3339", "2021-06-05T18:30:12Z", false},
		{"quicktime offset", "2021-06-05T14:30:12-0400", false},
		{"space separated", "2021-06-05 14:30:12", false},
		{"garbage", "yesterday", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCreationTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseCreationTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 0}, {90, 90}, {180, 180}, {270, 270},
		{-90, 270}, {-180, 180}, {-270, 90},
		{360, 0}, {450, 90}, {-450, 270},
		{89, 90}, {91, 90}, {1, 0}, {359, 0},
	}
	for _, tt := range tests {
		if got := normalizeRotation(tt.in); got != tt.want {
			t.Errorf("normalizeRotation(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDisplayDims(t *testing.T) {
	tests := []struct {
		rotation     int
		wantW, wantH int
	}{
		{0, 1920, 1080},
		{90, 1080, 1920},
		{180, 1920, 1080},
		{270, 1080, 1920},
	}
	for _, tt := range tests {
		m := &ClipMeta{Width: 1920, Height: 1080, Rotation: tt.rotation}
		w, h := m.DisplayDims()
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("rotation %d: DisplayDims = %dx%d, want %dx%d", tt.rotation, w, h, tt.wantW, tt.wantH)
		}
	}
}
