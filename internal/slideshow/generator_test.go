package slideshow

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelgen/internal/assets"
	"reelgen/internal/audio"
	"reelgen/internal/config"
	"reelgen/internal/encode"
	"reelgen/internal/history"
	"reelgen/internal/paths"
	"reelgen/internal/storage"
)

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

type recorder struct {
	phases []string
	frames int
}

func (r *recorder) Phase(s State, _ string) { r.phases = append(r.phases, s.String()) }
func (r *recorder) Frame(done, _ int)       { r.frames = done }

// copyMuxer stands in for ffmpeg: it copies the video bytes to out.
type copyMuxer struct{}

func (copyMuxer) Duration(context.Context, string) (float64, error) { return 2, nil }

func (copyMuxer) Mux(_ context.Context, video, _, out string, _ float64) error {
	data, err := os.ReadFile(video)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

type failingSink struct {
	writes int
}

func (s *failingSink) Write(*image.RGBA) error {
	s.writes++
	if s.writes == 3 {
		return errors.New("encoder died")
	}
	return nil
}

func (s *failingSink) Close() error { return nil }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Video = config.VideoConfig{Width: 40, Height: 80, FPS: 4, Quality: 75, Encoder: config.EncoderMJPEG}
	cfg.Timing = config.TimingConfig{DurationSec: 2, TransitionSec: 1}
	cfg.Sources = config.SourcesConfig{
		Folder1:      "s3://b/one",
		Folder2:      "s3://b/two",
		SingleFolder: "s3://b/pages",
	}
	cfg.TextBoxes = nil
	cfg.Audio.Path = "sounds"
	cfg.Output.File = "reel.avi"
	cfg.Output.Bucket = "videos"
	cfg.Output.Key = "out/reel.avi"
	return cfg
}

func seedStore(t *testing.T, pairs int) *storage.Memory {
	t.Helper()
	store := storage.NewMemory()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 200, A: 255}}, image.Point{}, draw.Src)
	for i := 1; i <= pairs; i++ {
		for _, folder := range []string{"one", "two", "pages"} {
			if err := store.PutImage("b", fmt.Sprintf("%s/%d.png", folder, i), img); err != nil {
				t.Fatal(err)
			}
		}
	}
	return store
}

func newGenerator(t *testing.T, cfg config.Config, store storage.Store) *Generator {
	t.Helper()
	wp, err := paths.Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	g := New(cfg, wp, store, firstRand{}, nil)
	g.Attacher = audio.New(copyMuxer{}, firstRand{}, nil)
	return g
}

func TestGenerateUploadsAndRecords(t *testing.T) {
	store := seedStore(t, 10)
	g := newGenerator(t, testConfig(), store)
	rep := &recorder{}

	res, err := g.Generate(context.Background(), "B", Options{SkipAudio: true, Reporter: rep})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.State != Uploaded || g.State() != Uploaded {
		t.Fatalf("state = %s", res.State)
	}
	if want := storage.PublicURL("videos", "out/reel.avi"); res.URL != want {
		t.Fatalf("url = %q, want %q", res.URL, want)
	}
	if _, ok := store.Uploaded("videos", "out/reel.avi"); !ok {
		t.Fatal("video was not uploaded")
	}
	if _, err := os.Stat(res.Output); err != nil {
		t.Fatalf("local output should be kept: %v", err)
	}
	if rep.frames != 8 {
		t.Fatalf("reported frames = %d, want 8", rep.frames)
	}
	if got := strings.Join(rep.phases, ","); got != "generating,encoded,uploaded" {
		t.Fatalf("phases = %s", got)
	}

	log, err := history.Load(g.Paths.HistoryFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(log.Runs) != 1 || log.Runs[0].Mode != "b" || log.Runs[0].URL != res.URL || log.Runs[0].ID != res.ID {
		t.Fatalf("history = %+v", log.Runs)
	}
}

func TestGenerateAttachesAudio(t *testing.T) {
	store := seedStore(t, 10)
	g := newGenerator(t, testConfig(), store)
	sounds := filepath.Join(g.Paths.Root, "sounds")
	if err := os.MkdirAll(sounds, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sounds, "bed.mp3"), []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}
	rep := &recorder{}

	res, err := g.Generate(context.Background(), "e", Options{Reporter: rep})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if filepath.Base(res.Track) != "bed.mp3" || res.AudioError != nil {
		t.Fatalf("track = %q, audio error = %v", res.Track, res.AudioError)
	}
	if got := strings.Join(rep.phases, ","); got != "generating,encoded,audio,uploaded" {
		t.Fatalf("phases = %s", got)
	}
}

func TestGenerateAudioFailureIsNotFatal(t *testing.T) {
	store := seedStore(t, 10)
	g := newGenerator(t, testConfig(), store)

	res, err := g.Generate(context.Background(), "a", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !errors.Is(res.AudioError, audio.ErrNoAudio) {
		t.Fatalf("audio error = %v, want ErrNoAudio", res.AudioError)
	}
	if res.State != Uploaded {
		t.Fatalf("state = %s", res.State)
	}
}

func TestGenerateInvalidMode(t *testing.T) {
	store := seedStore(t, 10)
	g := newGenerator(t, testConfig(), store)

	res, err := g.Generate(context.Background(), "x", Options{SkipAudio: true})
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("err = %v, want ErrInvalidMode", err)
	}
	if res.State != Aborted || store.Lists() != 0 || store.Reads() != 0 {
		t.Fatalf("state=%s lists=%d reads=%d", res.State, store.Lists(), store.Reads())
	}
}

func TestGenerateInsufficientAssetsAborts(t *testing.T) {
	store := seedStore(t, 1)
	g := newGenerator(t, testConfig(), store)
	rep := &recorder{}

	res, err := g.Generate(context.Background(), "c", Options{SkipAudio: true, Reporter: rep})
	if !errors.Is(err, assets.ErrInsufficientAssets) {
		t.Fatalf("err = %v, want ErrInsufficientAssets", err)
	}
	if res.State != Aborted || rep.phases[len(rep.phases)-1] != "aborted" {
		t.Fatalf("state = %s, phases = %v", res.State, rep.phases)
	}
	if store.Reads() != 0 || store.UploadCount() != 0 {
		t.Fatalf("reads=%d uploads=%d", store.Reads(), store.UploadCount())
	}
	if _, err := os.Stat(g.Paths.OutputFile(g.Config)); !os.IsNotExist(err) {
		t.Fatal("no output file should exist")
	}
	if _, err := os.Stat(g.Paths.HistoryFile); !os.IsNotExist(err) {
		t.Fatal("aborted runs are not recorded")
	}
}

func TestGenerateRemovesPartialOutput(t *testing.T) {
	store := seedStore(t, 10)
	g := newGenerator(t, testConfig(), store)
	g.Sinks = func(opts encode.Options) (encode.Sink, error) {
		if err := os.WriteFile(opts.Path, []byte("partial"), 0o644); err != nil {
			return nil, err
		}
		return &failingSink{}, nil
	}

	res, err := g.Generate(context.Background(), "f", Options{SkipAudio: true})
	if err == nil {
		t.Fatal("expected error")
	}
	if res.State != Aborted {
		t.Fatalf("state = %s", res.State)
	}
	if _, err := os.Stat(g.Paths.OutputFile(g.Config)); !os.IsNotExist(err) {
		t.Fatal("partial output should be removed")
	}
	if store.UploadCount() != 0 {
		t.Fatal("nothing should be uploaded")
	}
}

func TestGenerateSkipsUploadWithoutKey(t *testing.T) {
	cfg := testConfig()
	cfg.Output.Key = ""
	store := seedStore(t, 10)
	g := newGenerator(t, cfg, store)

	res, err := g.Generate(context.Background(), "g", Options{SkipAudio: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.State != Encoded || res.URL != "" || store.UploadCount() != 0 {
		t.Fatalf("state=%s url=%q uploads=%d", res.State, res.URL, store.UploadCount())
	}
}

func TestGenerateDropsLocalCopyWhenAsked(t *testing.T) {
	cfg := testConfig()
	keep := false
	cfg.Output.KeepLocal = &keep
	store := seedStore(t, 10)
	g := newGenerator(t, cfg, store)

	res, err := g.Generate(context.Background(), "h", Options{SkipAudio: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Output != "" {
		t.Fatalf("output = %q, want empty", res.Output)
	}
	if _, err := os.Stat(g.Paths.OutputFile(cfg)); !os.IsNotExist(err) {
		t.Fatal("local copy should be removed after upload")
	}
}

func TestSkipUpload(t *testing.T) {
	store := seedStore(t, 10)
	g := newGenerator(t, testConfig(), store)

	res, err := g.Generate(context.Background(), "d", Options{SkipAudio: true, SkipUpload: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.State != Encoded || store.UploadCount() != 0 {
		t.Fatalf("state=%s uploads=%d", res.State, store.UploadCount())
	}
}

type countingStore struct {
	*storage.Memory
	uploads int
}

func (c *countingStore) Upload(ctx context.Context, local, bucket, key string) (string, error) {
	c.uploads++
	return c.Memory.Upload(ctx, local, bucket, key)
}

func TestGenerateRefusesReusedKey(t *testing.T) {
	cfg := testConfig()
	overwrite := false
	cfg.Output.Overwrite = &overwrite
	store := &countingStore{Memory: seedStore(t, 10)}
	g := newGenerator(t, cfg, store)

	first, err := g.Generate(context.Background(), "a", Options{SkipAudio: true})
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	second, err := g.Generate(context.Background(), "a", Options{SkipAudio: true})
	if !errors.Is(err, ErrKeyReused) {
		t.Fatalf("err = %v, want ErrKeyReused", err)
	}
	if !strings.Contains(err.Error(), first.ID) {
		t.Fatalf("error %q should name run %s", err, first.ID)
	}
	if store.uploads != 1 {
		t.Fatalf("uploads = %d, want 1", store.uploads)
	}
	if second.State != Encoded || second.URL != "" {
		t.Fatalf("state=%s url=%q", second.State, second.URL)
	}
	if _, err := os.Stat(second.Output); err != nil {
		t.Fatalf("local output should survive a refused upload: %v", err)
	}

	log, err := history.Load(g.Paths.HistoryFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(log.Runs) != 1 || log.Runs[0].Key != "out/reel.avi" || log.Runs[0].Bucket != "videos" {
		t.Fatalf("history = %+v", log.Runs)
	}
}

func TestGenerateReportsReplacedUpload(t *testing.T) {
	store := seedStore(t, 10)
	g := newGenerator(t, testConfig(), store)

	first, err := g.Generate(context.Background(), "b", Options{SkipAudio: true})
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if first.Replaces != "" {
		t.Fatalf("first run replaces %q", first.Replaces)
	}
	second, err := g.Generate(context.Background(), "b", Options{SkipAudio: true})
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if second.Replaces != first.ID || second.State != Uploaded {
		t.Fatalf("replaces=%q state=%s, want %s uploaded", second.Replaces, second.State, first.ID)
	}
}

func TestGenerateExpandsKeyPerRun(t *testing.T) {
	cfg := testConfig()
	cfg.Output.Key = "out/{mode}/{id}.avi"
	overwrite := false
	cfg.Output.Overwrite = &overwrite
	store := seedStore(t, 10)
	g := newGenerator(t, cfg, store)

	var keys []string
	for i := 0; i < 2; i++ {
		res, err := g.Generate(context.Background(), "c", Options{SkipAudio: true})
		if err != nil {
			t.Fatalf("Generate %d: %v", i, err)
		}
		if want := "out/c/" + res.ID + ".avi"; res.Key != want {
			t.Fatalf("key = %q, want %q", res.Key, want)
		}
		if _, ok := store.Uploaded("videos", res.Key); !ok {
			t.Fatalf("%s was not uploaded", res.Key)
		}
		keys = append(keys, res.Key)
	}
	if keys[0] == keys[1] || store.UploadCount() != 2 {
		t.Fatalf("keys = %v, uploads = %d", keys, store.UploadCount())
	}
}

func TestExpandKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("x", -3*3600))
	cases := []struct {
		key, want string
	}{
		{" out/reel.mp4 ", "out/reel.mp4"},
		{"{date}/{mode}-{id}.mp4", "20240310/e-r1.mp4"},
		{"out/{other}.mp4", "out/{other}.mp4"},
	}
	for _, c := range cases {
		if got := ExpandKey(c.key, "r1", "e", at); got != c.want {
			t.Errorf("ExpandKey(%q) = %q, want %q", c.key, got, c.want)
		}
	}
}

func TestRandomMode(t *testing.T) {
	if got := RandomMode(firstRand{}); got != "a" {
		t.Fatalf("RandomMode = %q, want a", got)
	}
	if RandomOpposite(firstRand{}) {
		t.Fatal("RandomOpposite with a zero draw should be false")
	}
}
