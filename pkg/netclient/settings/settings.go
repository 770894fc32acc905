// Package settings holds the client configuration shared by the
// application services: endpoint paths, the local file directory, and a
// template request descriptor cloned per call.
package settings

import "github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/client"

// Setting is the client configuration. RequestTemplate is attached in a
// second phase so the template type can live with the driver without an
// import cycle back into settings.
type Setting struct {
	RequestTemplate *client.Request

	AuthServiceURL string
	FileServiceURL string

	LocalFileDir string
}

// New returns a Setting with the default endpoints and no template.
func New() *Setting {
	return &Setting{
		AuthServiceURL: "/login",
		FileServiceURL: "/file_service",
		LocalFileDir:   "./local_files/",
	}
}

// Default returns a fully initialized Setting: defaults first, then the
// canonical request template attached.
func Default() *Setting {
	s := New()
	s.RequestTemplate = client.DefaultRequestTemplate()
	return s
}

// CloneTemplate returns a per-call copy of the request template,
// attaching the default one first if the Setting was built bare.
func (s *Setting) CloneTemplate() client.Request {
	if s.RequestTemplate == nil {
		s.RequestTemplate = client.DefaultRequestTemplate()
	}
	return *s.RequestTemplate
}
