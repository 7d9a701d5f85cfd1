package hci

import (
	"context"
	"io"
	"time"

	"github.com/rigado/patchram/hcd"
	"github.com/rigado/patchram/linux/hci/cmd"
)

// DownloadPatchram puts the controller in download mode and replays image.
// no2bytes skips the two bytes older controllers send once the minidriver is
// running; it is forced for controllers known not to send them. settle, if
// not zero, is slept before the first record. It returns the number of records
// sent.
func (h *HCI) DownloadPatchram(ctx context.Context, image io.Reader, no2bytes bool, settle time.Duration) (int, error) {
	chipID, err := h.readChipID()
	if err != nil {
		return 0, err
	}
	if chipID == chipID4330B2 {
		no2bytes = true
	}

	if err := h.Send(&cmd.DownloadMinidriver{}, nil); err != nil {
		return 0, err
	}

	if !no2bytes {
		var b [minidriverTrailerLength]byte
		if err := h.fr.ReadFull(b[:]); err != nil {
			return 0, err
		}
		h.logger.Debugf("minidriver trailer % x", b)
	}

	if settle > 0 {
		h.sleep(settle)
	}

	return h.LoadPatch(ctx, image)
}

// LoadPatch sends every record of image as a command and waits for each
// acknowledgement. It stops cleanly at the end of the image.
func (h *HCI) LoadPatch(ctx context.Context, image io.Reader) (int, error) {
	r := hcd.NewReader(image)
	sent := 0

	for {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sent, err
		}

		if err := h.Send(&cmd.Raw{Op: rec.OpCode, Params: rec.Payload}, nil); err != nil {
			return sent, err
		}
		sent++
	}

	h.logger.Infof("patchram download complete, %d records", sent)
	return sent, nil
}

// readChipID queries the version. A reply too short to hold the chip id is
// logged and reported as id 0.
func (h *HCI) readChipID() (uint8, error) {
	e, err := h.exchange(&cmd.ReadVerboseConfigVersionInfo{}, h.fr)
	if err != nil {
		return 0, err
	}

	rp := &cmd.ReadVerboseConfigVersionInfoRP{}
	if err := rp.Unmarshal(e.CommandComplete().ReturnParameters()); err != nil {
		h.logger.Warnf("unknown chip id: %v", err)
		return 0, nil
	}
	h.logger.Debugf("chip_id is %02x, build %d.%d", rp.ChipID, rp.BuildBase, rp.BuildNum)
	return rp.ChipID, nil
}
