package videoref

import (
	"encoding/json"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		ref  Ref
		want string
	}{
		{name: "plain filename", ref: Filename("clip.mp4"), want: "clip.mp4"},
		{name: "filename that is a blob", ref: Filename("blob:http://localhost/abc"), want: Placeholder},
		{name: "handle with filename field", ref: LocalHandle("blob:x", Names{Filename: "a.mp4", Name: "b.mp4"}), want: "a.mp4"},
		{name: "handle falls to name", ref: LocalHandle("blob:x", Names{Name: "b.mp4", VideoName: "d.mp4"}), want: "b.mp4"},
		{name: "handle falls to original", ref: LocalHandle("blob:x", Names{OriginalFilename: "c.mp4", VideoName: "d.mp4"}), want: "c.mp4"},
		{name: "handle falls to video name", ref: LocalHandle("blob:x", Names{VideoName: "d.mp4"}), want: "d.mp4"},
		{name: "bare handle", ref: LocalHandle("blob:http://localhost/abc", Names{}), want: Placeholder},
		{name: "remote url", ref: RemoteURL("http://localhost:8000/uploads/talk.mp4", Names{}), want: "talk.mp4"},
		{name: "remote url with query", ref: RemoteURL("https://cdn.example.com/v/my%20clip.mp4?sig=1", Names{}), want: "my clip.mp4"},
		{name: "relative backend url", ref: RemoteURL("/uploads/intro.mov", Names{}), want: "intro.mov"},
		{name: "remote url names win", ref: RemoteURL("http://h/x.mp4", Names{Name: "named.mp4"}), want: "named.mp4"},
		{name: "remote url without path", ref: RemoteURL("http://h/", Names{}), want: Placeholder},
		{name: "zero ref", ref: Ref{}, want: Placeholder},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.ref); got != tc.want {
				t.Fatalf("Resolve() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
	}{
		{raw: "video.mp4", want: KindFilename},
		{raw: "blob:http://localhost:3000/1234", want: KindLocalHandle},
		{raw: "http://localhost:8000/uploads/v.mp4", want: KindRemoteURL},
		{raw: "/uploads/v.mp4", want: KindRemoteURL},
		{raw: "", want: KindNone},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			if got := Parse(tc.raw, Names{}).Kind(); got != tc.want {
				t.Fatalf("Parse(%q).Kind() = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParse_EmptyWithNames(t *testing.T) {
	ref := Parse("", Names{Name: "upload.mp4"})
	if ref.Kind() != KindLocalHandle {
		t.Fatalf("kind = %v, want local_handle", ref.Kind())
	}
	if got := Resolve(ref); got != "upload.mp4" {
		t.Fatalf("Resolve() = %q, want upload.mp4", got)
	}
}

func TestIsPlaceholder(t *testing.T) {
	if !IsPlaceholder(Resolve(LocalHandle("blob:1", Names{}))) {
		t.Fatal("bare local handle should resolve to the placeholder")
	}
	if IsPlaceholder("real.mp4") {
		t.Fatal("real filename reported as placeholder")
	}
}

func TestNames_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "camel video name", body: `{"videoName":"clip.mp4"}`, want: "clip.mp4"},
		{name: "snake video name", body: `{"video_name":"clip.mp4"}`, want: "clip.mp4"},
		{name: "camel original", body: `{"originalFilename":"orig.mov"}`, want: "orig.mov"},
		{name: "snake original", body: `{"original_filename":"orig.mov"}`, want: "orig.mov"},
		{name: "camel wins", body: `{"videoName":"camel.mp4","video_name":"snake.mp4"}`, want: "camel.mp4"},
		{name: "empty", body: `{}`, want: Placeholder},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var n Names
			if err := json.Unmarshal([]byte(tc.body), &n); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got := Resolve(LocalHandle("blob:http://localhost/1", n)); got != tc.want {
				t.Fatalf("Resolve() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNames_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(Names{OriginalFilename: "a.mov", VideoName: "b.mp4"})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(raw); got != `{"originalFilename":"a.mov","videoName":"b.mp4"}` {
		t.Fatalf("Marshal() = %s", got)
	}
}
