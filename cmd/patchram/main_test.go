package main

import (
	"encoding/binary"
	"io"
	"io/ioutil"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rigado/patchram"
	"github.com/rigado/patchram/linux/hci/hcitest"
	"github.com/rigado/patchram/profile"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func runApp(t *testing.T, args ...string) (int, error) {
	code := 0
	exiter := cli.OsExiter
	cli.OsExiter = func(c int) { code = c }
	defer func() { cli.OsExiter = exiter }()

	app := newApp()
	app.Writer = ioutil.Discard
	app.ErrWriter = ioutil.Discard
	err := app.Run(append([]string{"patchram"}, args...))
	return code, err
}

// bridge is a controller behind a TCP serial bridge that acknowledges every
// command.
type bridge struct {
	l      net.Listener
	mu     sync.Mutex
	frames [][]byte
}

func newBridge(t *testing.T) *bridge {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	b := &bridge{l: l}
	t.Cleanup(func() { l.Close() })

	go b.serve()
	return b
}

func (b *bridge) serve() {
	c, err := b.l.Accept()
	if err != nil {
		return
	}
	defer c.Close()

	for {
		hdr := make([]byte, 4)
		if _, err := io.ReadFull(c, hdr); err != nil {
			return
		}
		params := make([]byte, hdr[3])
		if _, err := io.ReadFull(c, params); err != nil {
			return
		}

		b.mu.Lock()
		b.frames = append(b.frames, append(hdr, params...))
		b.mu.Unlock()

		if _, err := c.Write(hcitest.CommandComplete(binary.LittleEndian.Uint16(hdr[1:]), 0x00)); err != nil {
			return
		}
	}
}

func (b *bridge) Frames() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

func (b *bridge) Addr() string {
	return b.l.Addr().String()
}

func TestRunOverTCP(t *testing.T) {
	b := newBridge(t)

	code, err := runApp(t, "--tcp", b.Addr(), "--bd_addr", "43:29:B1:55:01:02", "--enable_lpm")
	require.NoError(t, err)
	require.Zero(t, code)

	frames := b.Frames()
	require.Len(t, frames, 3)
	require.Equal(t, []byte{0x01, 0x03, 0x0c, 0x00}, frames[0])
	require.Equal(t, []byte{0x01, 0x01, 0xfc, 0x06, 0x02, 0x01, 0x55, 0xb1, 0x29, 0x43}, frames[1])
	require.Equal(t, []byte{0x01, 0x27, 0xfc, 0x0c}, frames[2][:4])
}

func TestSettingsPrecedence(t *testing.T) {
	dir, err := ioutil.TempDir("", "patchram")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	addrFile := filepath.Join(dir, "bdaddr")
	require.NoError(t, ioutil.WriteFile(addrFile, []byte("11:22:33:44:55:66\n"), 0644))

	b := newBridge(t)
	profiles := filepath.Join(dir, "profiles.json")
	require.NoError(t, profile.New(profiles).Store(b.Addr(), patchram.Profile{Settings: []patchram.Setting{
		{Kind: patchram.SettingBDAddr, Arg: "AA:BB:CC:DD:EE:FF"},
		{Kind: patchram.SettingEnableLPM},
	}}, false))

	// the address file overrides the profile
	code, err := runApp(t, "--tcp", b.Addr(), "--profile", profiles, "--bd_addr_path", addrFile)
	require.NoError(t, err)
	require.Zero(t, code)

	frames := b.Frames()
	require.Len(t, frames, 3)
	require.Equal(t, []byte{0x01, 0x01, 0xfc, 0x06, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}, frames[1])

	// and the command line overrides both
	b = newBridge(t)
	require.NoError(t, profile.New(profiles).Store(b.Addr(), patchram.Profile{Settings: []patchram.Setting{
		{Kind: patchram.SettingBDAddr, Arg: "AA:BB:CC:DD:EE:FF"},
	}}, false))

	code, err = runApp(t, "--tcp", b.Addr(), "--profile", profiles, "--bd_addr_path", addrFile,
		"--bd_addr", "43:29:B1:55:01:02", "--save-profile")
	require.NoError(t, err)
	require.Zero(t, code)
	require.Equal(t, []byte{0x01, 0x01, 0xfc, 0x06, 0x02, 0x01, 0x55, 0xb1, 0x29, 0x43}, b.Frames()[1])

	saved, err := profile.New(profiles).Load(b.Addr())
	require.NoError(t, err)
	require.Equal(t, patchram.Setting{Kind: patchram.SettingBDAddr, Arg: "43:29:B1:55:01:02"},
		saved.Settings[len(saved.Settings)-1])
}

func TestBadAddressFileIsIgnored(t *testing.T) {
	b := newBridge(t)

	code, err := runApp(t, "--tcp", b.Addr(), "--bd_addr_path", "/nonexistent/bdaddr")
	require.NoError(t, err)
	require.Zero(t, code)
	require.Len(t, b.Frames(), 1)
}

func TestExitCodes(t *testing.T) {
	dir, err := ioutil.TempDir("", "patchram")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	testCases := []struct {
		name string
		args []string
		code int
	}{
		{"no device", nil, patchram.ExitUsage},
		{"two devices", []string{"/dev/null", "/dev/zero"}, patchram.ExitUsage},
		{"device and tcp", []string{"--tcp", "127.0.0.1:1", "/dev/null"}, patchram.ExitUsage},
		{"both transports", []string{"--enable_h4", "--enable_h5", "/dev/null"}, patchram.ExitUsage},
		{"unsupported baud", []string{"--baudrate", "12345", "/dev/null"}, patchram.ExitUsage},
		{"bad baud", []string{"--baudrate", "fast", "/dev/null"}, patchram.ExitUsage},
		{"bad address", []string{"--bd_addr", "43:29:B1:55:01", "/dev/null"}, patchram.ExitUsage},
		{"bad scopcm", []string{"--scopcm", "1,2,3", "/dev/null"}, patchram.ExitUsage},
		{"bad tosleep", []string{"--tosleep", "0", "/dev/null"}, patchram.ExitUsage},
		{"hand-off over tcp", []string{"--tcp", "127.0.0.1:1", "--enable_h4"}, patchram.ExitUsage},
		{"save without profile", []string{"--save-profile", "/dev/null"}, patchram.ExitUsage},
		{"no extension", []string{"--patchram", filepath.Join(dir, "BCM4343"), "/dev/null"}, patchram.ExitNoExtension},
		{"not hcd", []string{"--patchram", filepath.Join(dir, "BCM4343.bin"), "/dev/null"}, patchram.ExitNotHCD},
		{"missing image", []string{"--patchram", filepath.Join(dir, "BCM4343.HCD"), "/dev/null"}, patchram.ExitPatchramOpen},
		{"missing port", []string{filepath.Join(dir, "ttyHS0")}, patchram.ExitPortOpen},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, err := runApp(t, tc.args...)
			require.Error(t, err)
			require.Equal(t, tc.code, code)
		})
	}
}

func TestUnknownFlag(t *testing.T) {
	_, err := runApp(t, "--bogus", "/dev/null")
	require.Error(t, err)
}
