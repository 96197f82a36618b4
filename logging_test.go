package groundmotion

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWriterLogger("player", false, &out, &errOut)

	logger.Debugf("hidden %d", 1)
	assert.Empty(t, out.String())

	logger.SetDebug(true)
	assert.True(t, logger.DebugEnabled())
	logger.Debugf("shown %d", 2)
	assert.Contains(t, out.String(), "[player] DEBUG: shown 2")

	logger.Warnf("careful")
	logger.Errorf("broken")
	assert.Contains(t, errOut.String(), "[player] WARN: careful")
	assert.Contains(t, errOut.String(), "[player] ERROR: broken")
}

func TestController_LogsDiscardedNormals(t *testing.T) {
	var out bytes.Buffer
	logger := NewWriterLogger("", true, &out, &out)
	c, err := NewController(DefaultConfig(), &fakeRaycaster{}, WithLogger(logger))
	assert.NoError(t, err)

	c.IngestContact(nil, mgl32.Vec3{})
	assert.Contains(t, out.String(), "DEBUG: discarding degenerate contact normal")
}

func TestFields(t *testing.T) {
	assert.Equal(t, "steps=3 speed=1.5", Fields("steps", 3, "speed", 1.5))
	assert.Equal(t, "normal=[0 1 0] dangling=?", Fields("normal", mgl32.Vec3{0, 1, 0}, "dangling"))
	assert.Empty(t, Fields())
}

func TestController_LogsLandingFields(t *testing.T) {
	var out bytes.Buffer
	logger := NewWriterLogger("", true, &out, &out)
	c, err := NewController(DefaultConfig(), &fakeRaycaster{}, WithLogger(logger))
	assert.NoError(t, err)
	body := &fakeBody{mass: 1}

	for i := 0; i < 3; i++ {
		c.Step(body, dt, gravity)
	}
	groundStep(c, body)
	assert.Contains(t, out.String(), "DEBUG: landed: steps=4 ground=1 steep=0")
}
