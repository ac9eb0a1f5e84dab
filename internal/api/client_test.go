package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return New(ts.URL+"/", time.Second)
}

func TestDecodeListShapes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		header     string
		items      int
		total      int
		totalPages int
	}{
		{name: "bare array", body: `[{"id":1},{"id":2}]`, items: 2, total: -1, totalPages: -1},
		{name: "pagination object", body: `{"posts":[{"id":1}],"pagination":{"total":12,"totalPages":3}}`, items: 1, total: 12, totalPages: 3},
		{name: "top level counts", body: `{"items":[{"id":1}],"totalCount":"7"}`, items: 1, total: 7, totalPages: -1},
		{name: "header total", body: `{"data":[{"id":1}]}`, header: "4", items: 1, total: 4, totalPages: -1},
		{name: "null rows", body: `{"posts":null}`, items: 0, total: -1, totalPages: -1},
		{name: "empty body", body: ``, items: 0, total: -1, totalPages: -1},
	}
	deref := func(p *int) int {
		if p == nil {
			return -1
		}
		return *p
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("X-Total-Count", tt.header)
			}
			l, err := decodeList([]byte(tt.body), h, "posts", "items", "data")
			if err != nil {
				t.Fatal(err)
			}
			if len(l.Items) != tt.items || deref(l.Total) != tt.total || deref(l.TotalPages) != tt.totalPages {
				t.Fatalf("got items=%d total=%d pages=%d", len(l.Items), deref(l.Total), deref(l.TotalPages))
			}
		})
	}

	if _, err := decodeList([]byte(`"nope"`), nil, "posts"); err == nil {
		t.Fatal("string body decoded as a list")
	}
}

func TestListPostsQueryAndToken(t *testing.T) {
	var gotQuery, gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, `{"posts":[{"id":5}],"pagination":{"total":1}}`)
	})

	if _, err := c.ListPosts(context.Background(), PostQuery{CategoryID: 2, Page: 3, Limit: 5}); err != nil {
		t.Fatal(err)
	}
	if gotQuery != "categoryId=2&limit=5&page=3" {
		t.Fatalf("query = %q", gotQuery)
	}
	if gotAuth != "" {
		t.Fatalf("anonymous client sent %q", gotAuth)
	}

	if _, err := c.WithToken("tok").ListPosts(context.Background(), PostQuery{}); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotQuery != "" {
		t.Fatalf("zero query sent %q", gotQuery)
	}
}

func TestStatusErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/posts/404":
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"message":"post not found"}`)
		case "/api/posts/401":
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":"token expired"}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `<html>boom</html>`)
		}
	})
	ctx := context.Background()

	_, err := c.GetPost(ctx, 404)
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "post not found" || !errors.Is(err, ErrNotFound) {
		t.Fatalf("404 err = %v", err)
	}
	_, err = c.GetPost(ctx, 401)
	if !errors.Is(err, ErrUnauthorized) || !errors.As(err, &se) || se.Message != "token expired" {
		t.Fatalf("401 err = %v", err)
	}
	_, err = c.GetPost(ctx, 500)
	if !errors.As(err, &se) || se.Message != http.StatusText(http.StatusInternalServerError) || errors.Is(err, ErrNotFound) {
		t.Fatalf("500 err = %v", err)
	}
}

func TestGetPostUnwrapsAndNull(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/posts/1" {
			io.WriteString(w, `{"post":{"id":1,"title":"hello"}}`)
			return
		}
		io.WriteString(w, `{"post":null}`)
	})
	raw, err := c.GetPost(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	var p struct{ Title string }
	if err := json.Unmarshal(raw, &p); err != nil || p.Title != "hello" {
		t.Fatalf("post = %s, %v", raw, err)
	}
	if _, err := c.GetPost(context.Background(), 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("null post err = %v", err)
	}
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		switch in["email"] {
		case "access@club.test":
			io.WriteString(w, `{"accessToken":"a1","role":"officer","user":{"name":"Kim"}}`)
		case "legacy@club.test":
			io.WriteString(w, `{"token":"t1","message":"welcome"}`)
		case "empty@club.test":
			io.WriteString(w, `{"message":"ok"}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"message":"Invalid credentials"}`)
		}
	})
	ctx := context.Background()

	res, err := c.Login(ctx, "access@club.test", "pw")
	if err != nil || res.Token != "a1" || res.Role != "officer" || len(res.User) == 0 {
		t.Fatalf("access login = %+v, %v", res, err)
	}
	res, err = c.Login(ctx, "legacy@club.test", "pw")
	if err != nil || res.Token != "t1" || res.Message != "welcome" {
		t.Fatalf("legacy login = %+v, %v", res, err)
	}
	var se *StatusError
	if _, err := c.Login(ctx, "empty@club.test", "pw"); !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Fatalf("tokenless login err = %v", err)
	}
	if _, err := c.Login(ctx, "nobody@club.test", "pw"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad login err = %v", err)
	}
}

func TestMyPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer me" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"user":{"name":"Kim"},"posts":[{"id":1},{"id":2}]}`)
	})
	mp, err := c.WithToken("me").MyPage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(mp.Posts) != 2 || len(mp.User) == 0 {
		t.Fatalf("mypage = %+v", mp)
	}
	if _, err := c.MyPage(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("anonymous mypage err = %v", err)
	}
}

func TestWriteMethods(t *testing.T) {
	type call struct{ method, path, body string }
	var calls []call
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, call{r.Method, r.URL.Path, string(b)})
		io.WriteString(w, `{}`)
	})
	ctx := context.Background()
	if err := c.UpdateComment(ctx, 7, "edited"); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteComment(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := c.SetMemberRole(ctx, 3, "officer"); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteMember(ctx, 3); err != nil {
		t.Fatal(err)
	}
	want := []call{
		{http.MethodPut, "/api/comments/7", `{"content":"edited"}`},
		{http.MethodDelete, "/api/comments/7", ""},
		{http.MethodPatch, "/api/members/3/role", `{"role":"officer"}`},
		{http.MethodDelete, "/api/members/3", ""},
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %+v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("call %d = %+v, want %+v", i, calls[i], want[i])
		}
	}
}
