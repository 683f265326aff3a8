package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEngineHooks{}
	e.OnBatchStart(ctx, "static/wsb/page.json", 3)
	e.OnBatchComplete(ctx, "static/wsb/page.json", 3, time.Millisecond, nil)
	e.OnPageCreated(ctx, "static/wsb/page.json")

	s := NoopStoreHooks{}
	s.OnLoad(ctx, "file", "page.json", false, time.Millisecond, nil)
	s.OnSave(ctx, "redis", "page.json", 2048, time.Millisecond, nil)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/v1/components")
	h.OnResponse(ctx, "GET", "/v1/components", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Engine() should return NoopEngineHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customEngine := &testEngineHooks{}
	SetEngineHooks(customEngine)
	if Engine() != customEngine {
		t.Error("SetEngineHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Reset() should restore NoopEngineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testEngineHooks{}
	SetEngineHooks(custom)
	SetEngineHooks(nil)

	if Engine() != custom {
		t.Error("SetEngineHooks(nil) should be ignored")
	}

	Reset()
}

type testEngineHooks struct{ NoopEngineHooks }
type testStoreHooks struct{ NoopStoreHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
