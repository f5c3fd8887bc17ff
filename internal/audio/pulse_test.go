package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectFromListDefault(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Default: true},
		{ID: "sony", Description: "Sony WH-1000XM6", Available: true},
	}

	dev, err := selectFromList(devices, "default", "default")
	require.NoError(t, err)
	require.Equal(t, "elgato", dev.ID)
}

func TestSelectFromListMatchesByIDAndDescription(t *testing.T) {
	devices := []Device{
		{ID: "alsa_input.usb-elgato", Description: "Elgato Wave 3 Mono", Available: true},
		{ID: "sony", Description: "Sony WH-1000XM6", Available: true, Default: true},
	}

	dev, err := selectFromList(devices, "wave 3", "default")
	require.NoError(t, err)
	require.Equal(t, "alsa_input.usb-elgato", dev.ID)
}

func TestSelectFromListMutedPrimaryUsesFallback(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Muted: true, Default: true},
		{ID: "sony", Description: "Sony WH-1000XM6", Available: true},
	}

	dev, err := selectFromList(devices, "elgato", "sony")
	require.NoError(t, err)
	require.Equal(t, "sony", dev.ID)
}

func TestSelectFromListFailsWhenNothingUsable(t *testing.T) {
	devices := []Device{
		{ID: "elgato", Description: "Elgato Wave 3 Mono", Available: true, Muted: true, Default: true},
	}

	_, err := selectFromList(devices, "default", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no usable input device")
}

func TestSelectFromListEmpty(t *testing.T) {
	_, err := selectFromList(nil, "default", "default")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no audio input devices")
}

func TestDeviceLabel(t *testing.T) {
	require.Equal(t, "Elgato Wave 3 (elgato)", Device{ID: "elgato", Description: "Elgato Wave 3"}.Label())
	require.Equal(t, "elgato", Device{ID: "elgato"}.Label())
	require.Equal(t, "Elgato Wave 3", Device{Description: "Elgato Wave 3"}.Label())
}

func TestListDevicesFailsWhenPulseUnavailable(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	_, err := ListDevices(context.Background())
	require.Error(t, err)
}
