// Package v4l2cam implements the avdevice capture surface over Video4Linux2
// cameras. Importing the package registers the backend:
//
//	import _ "github.com/camkit/camsession/pkg/v4l2cam"
//
// Photo capture and movie recording require a camera that can deliver MJPEG
// frames; most UVC webcams do.
package v4l2cam
