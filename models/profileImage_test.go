package models

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"github.com/disintegration/imaging"
)

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: make(map[string][]byte)}
}

func (m *memoryObjects) Upload(_ context.Context, name string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
	return "https://cdn.test/" + name, nil
}

func (m *memoryObjects) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, name)
	return nil
}

func (m *memoryObjects) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[name]
	return ok
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPrepareProfileImage_FitsLongSide(t *testing.T) {
	out, err := PrepareProfileImage(bytes.NewReader(pngBytes(t, 1024, 600)))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if img.Bounds().Dx() != 512 || img.Bounds().Dy() != 300 {
		t.Fatalf("size = %v", img.Bounds())
	}

	small, _ := PrepareProfileImage(bytes.NewReader(pngBytes(t, 100, 80)))
	img, _ = imaging.Decode(bytes.NewReader(small))
	if img.Bounds().Dx() != 100 {
		t.Fatalf("small image resized to %v", img.Bounds())
	}

	if _, err := PrepareProfileImage(strings.NewReader("not an image")); err == nil {
		t.Fatalf("garbage accepted")
	}
}

func TestSetProfileImage_ReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	objects := newMemoryObjects()
	store := docstore.NewMemoryStore()
	defer store.Close()
	repos := NewRepositories(store, Dependencies{Storage: objects})

	tick := time.UnixMilli(1700000000000)
	repos.Images.now = func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}

	c, _ := repos.Clients.CreateClient(ctx, docstore.Data{"name": "A"})
	first, err := repos.Clients.SetProfileImage(ctx, c.ID, bytes.NewReader(pngBytes(t, 64, 64)))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if !strings.HasPrefix(first.Path, "userProfiles/"+c.ID+"/profileImage_") {
		t.Fatalf("path = %q", first.Path)
	}
	second, err := repos.Clients.SetProfileImage(ctx, c.ID, bytes.NewReader(pngBytes(t, 64, 64)))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if objects.has(first.Path) || !objects.has(second.Path) {
		t.Fatalf("previous image not replaced")
	}
	got, _ := repos.Clients.Get(ctx, c.ID)
	if got.ProfileImage == nil || got.ProfileImage.URL != "https://cdn.test/"+second.Path {
		t.Fatalf("profileImage = %+v", got.ProfileImage)
	}

	if err := repos.Clients.Remove(ctx, c.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if objects.has(second.Path) {
		t.Fatalf("image kept after client removal")
	}
}

func TestCreateClient_MigratesInlinePicture(t *testing.T) {
	ctx := context.Background()
	objects := newMemoryObjects()
	store := docstore.NewMemoryStore()
	defer store.Close()
	repos := NewRepositories(store, Dependencies{Storage: objects})

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 32, 32))
	c, err := repos.Clients.CreateClient(ctx, docstore.Data{"name": "A", "profilePic": uri})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ProfileImage == nil || !objects.has(c.ProfileImage.Path) {
		t.Fatalf("inline picture not migrated: %+v", c.ProfileImage)
	}
	doc, _ := store.Get(ctx, ClientCollection, c.ID)
	if _, ok := doc.Data["profilePic"]; ok {
		t.Fatalf("inline picture stored")
	}
}
