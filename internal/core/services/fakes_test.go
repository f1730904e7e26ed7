package services

import (
	"context"
	"io"

	"github.com/pollbooth/pollbooth/internal/core/domain"
)

type gatewayCall struct {
	Method  string
	Path    string
	Body    any
	Fields  map[string]string
	HasFile bool
}

// fakeGateway records every outbound call and lets a test script the
// response by writing into out.
type fakeGateway struct {
	calls   []gatewayCall
	handler func(call gatewayCall, out any) error
}

func (f *fakeGateway) GetJSON(_ context.Context, path string, out any) error {
	return f.dispatch(gatewayCall{Method: "GET", Path: path}, out)
}

func (f *fakeGateway) PostJSON(_ context.Context, path string, body any, out any) error {
	return f.dispatch(gatewayCall{Method: "POST", Path: path, Body: body}, out)
}

func (f *fakeGateway) PostMultipart(_ context.Context, path string, fields map[string]string, _, _ string, file io.Reader, out any) error {
	return f.dispatch(gatewayCall{Method: "POST", Path: path, Fields: fields, HasFile: file != nil}, out)
}

func (f *fakeGateway) Download(_ context.Context, path string) ([]byte, error) {
	var data []byte
	err := f.dispatch(gatewayCall{Method: "GET", Path: path}, &data)
	return data, err
}

func (f *fakeGateway) dispatch(call gatewayCall, out any) error {
	f.calls = append(f.calls, call)
	if f.handler != nil {
		return f.handler(call, out)
	}
	return nil
}

func (f *fakeGateway) callsTo(path string) int {
	n := 0
	for _, c := range f.calls {
		if c.Path == path {
			n++
		}
	}
	return n
}

type fakeStore struct {
	session domain.Session
	loadErr error
	saveErr error
	saved   []domain.Session
	cleared int
}

func (f *fakeStore) Load() (domain.Session, error) {
	if f.loadErr != nil {
		return domain.Session{}, f.loadErr
	}
	return f.session, nil
}

func (f *fakeStore) Save(s domain.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.session = s
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeStore) Clear() error {
	f.cleared++
	f.session = domain.Session{}
	return nil
}
