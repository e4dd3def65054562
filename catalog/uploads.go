////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package catalog

// MaxUploadSize is the largest attachment the server accepts, in bytes.
const MaxUploadSize = 20 * 1024 * 1024

// allowedUploadTypes mirrors the server-side attachment allow-list. Uploads
// of any other MIME type are rejected locally before a request is made.
var allowedUploadTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},

	"video/mp4": {},
	"video/avi": {},
	"video/mov": {},
	"video/wmv": {},

	"audio/mp3": {},
	"audio/wav": {},
	"audio/ogg": {},

	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// IsAllowedUploadType reports whether the given MIME type is on the upload
// allow-list.
func IsAllowedUploadType(mime string) bool {
	_, ok := allowedUploadTypes[mime]
	return ok
}
