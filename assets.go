package formflow

import (
	"embed"
	"io/fs"
)

//go:embed assets/formflow.js
var embeddedAssets embed.FS

// AssetsFS exposes the browser-side interceptor bundle so applications can
// serve it without a build step. The script mirrors the Go interceptor's
// contract: suppress native submission, post form-encoded with the AJAX
// marker and CSRF token headers, then apply banners and row replacement.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formflow.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
