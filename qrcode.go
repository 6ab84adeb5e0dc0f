package camsession

import (
	"github.com/camkit/camsession/internal/events"
	"github.com/camkit/camsession/pkg/avdevice"
)

// supportedCodeTypes is the fixed set of machine-readable codes the detector
// asks for; the actual restriction is this set intersected with what the
// output reports as available.
var supportedCodeTypes = []avdevice.MetadataObjectType{
	avdevice.ObjectTypeQR,
	avdevice.ObjectTypeAztec,
	avdevice.ObjectTypeDataMtx,
	avdevice.ObjectTypeEAN13,
	avdevice.ObjectTypeEAN8,
	avdevice.ObjectTypePDF417,
}

// StartQRCodeDetection attaches a metadata output to the session and invokes
// handler with each decoded code value. Attachment is skipped silently when
// the session cannot accept the output.
func (c *CameraController) StartQRCodeDetection(handler func(value string)) error {
	c.mu.Lock()
	session := c.session
	c.qrHandler = handler
	c.mu.Unlock()

	if session == nil {
		return ErrSessionMissing
	}

	c.queue.Async(func() {
		c.mu.Lock()
		output := c.metadataOutput
		c.mu.Unlock()

		if output == nil {
			output = c.opts.backend.NewMetadataOutput()
			if !session.CanAddOutput(output) {
				return
			}
			session.BeginConfiguration()
			err := session.AddOutput(output)
			session.CommitConfiguration()
			if err != nil {
				return
			}
			c.mu.Lock()
			c.metadataOutput = output
			c.mu.Unlock()
		}

		// Type restriction is only valid once the output is attached.
		if err := output.SetObjectTypes(intersectTypes(supportedCodeTypes, output.AvailableObjectTypes())); err != nil {
			c.log.Warnf("code detection type restriction not applied: %v", err)
		}
		output.SetHandler(c.metadataObjectsDetected)
	})
	return nil
}

// StopQRCodeDetection clears the handler and detaches the metadata output.
func (c *CameraController) StopQRCodeDetection() {
	c.mu.Lock()
	c.qrHandler = nil
	session := c.session
	output := c.metadataOutput
	c.metadataOutput = nil
	c.mu.Unlock()

	if session == nil || output == nil {
		return
	}
	c.queue.Async(func() {
		output.SetHandler(nil)
		session.BeginConfiguration()
		session.RemoveOutput(output)
		session.CommitConfiguration()
	})
}

// metadataObjectsDetected forwards the first decodable string value to the
// registered handler. No handler or no decodable value is a silent no-op.
func (c *CameraController) metadataObjectsDetected(objects []avdevice.MetadataObject) {
	c.mu.Lock()
	handler := c.qrHandler
	c.mu.Unlock()
	if handler == nil {
		return
	}

	for _, obj := range objects {
		if obj.StringValue == "" {
			continue
		}
		value := obj.StringValue
		c.bus.Publish(events.QRCodeEvent{Value: value})
		c.opts.dispatch(func() { handler(value) })
		return
	}
}

// OnQRCode subscribes to decoded code values on the event bus.
func (c *CameraController) OnQRCode(h func(value string)) func() {
	return c.bus.Subscribe(func(e events.QRCodeEvent) { h(e.Value) })
}

func intersectTypes(want, available []avdevice.MetadataObjectType) []avdevice.MetadataObjectType {
	avail := make(map[avdevice.MetadataObjectType]bool, len(available))
	for _, t := range available {
		avail[t] = true
	}
	var out []avdevice.MetadataObjectType
	for _, t := range want {
		if avail[t] {
			out = append(out, t)
		}
	}
	return out
}
