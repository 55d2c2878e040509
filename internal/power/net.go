package power

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const wirelessStatsPath = "/proc/net/wireless"

// Connectivity probes the network link the fetch step depends on.
type Connectivity interface {
	// Check returns nil when the network is reachable.
	Check(ctx context.Context) error
	// RSSI returns the wireless signal level in dB, or 0 when unknown.
	RSSI() int
}

// TCPCheck verifies connectivity by dialing a TCP endpoint, typically the
// weather API host on port 443. Signal strength comes from the kernel's
// wireless stats, so wired or containerized deployments report 0.
type TCPCheck struct {
	Addr    string
	Timeout time.Duration

	// statsPath overrides the wireless stats file in tests.
	statsPath string
}

// NewTCPCheck returns a checker dialing addr with the given timeout.
func NewTCPCheck(addr string, timeout time.Duration) *TCPCheck {
	return &TCPCheck{Addr: addr, Timeout: timeout}
}

// Check dials the configured endpoint and closes the connection.
func (t *TCPCheck) Check(ctx context.Context) error {
	d := net.Dialer{Timeout: t.Timeout}
	conn, err := d.DialContext(ctx, "tcp", t.Addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.Addr, err)
	}
	return conn.Close()
}

// RSSI reads the signal level of the first wireless interface.
func (t *TCPCheck) RSSI() int {
	path := t.statsPath
	if path == "" {
		path = wirelessStatsPath
	}
	return readWirelessLevel(path)
}

// readWirelessLevel parses the level column of /proc/net/wireless:
//
//	Inter-| sta-|   Quality        |   Discarded packets
//	 face | tus | link level noise |  nwid  crypt ...
//	wlan0: 0000   54.  -56.  -256  ...
//
// Returns 0 when no wireless interface is up or the file is unreadable.
func readWirelessLevel(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		if line <= 2 {
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[3], "."), 64)
		if err != nil {
			continue
		}
		return int(level)
	}
	return 0
}
