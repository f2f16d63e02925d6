package gps

import (
	"bufio"
	"context"
	"errors"
	"strings"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// SerialProvider retrieves fixes from a GPS sensor connected via serial port.
type SerialProvider struct {
	port     string
	baudRate int
}

// NewSerialProvider creates a new SerialProvider with the specified port and baud rate.
func NewSerialProvider(port string, baudRate int) *SerialProvider {
	return &SerialProvider{
		port:     port,
		baudRate: baudRate,
	}
}

// GetPosition reads NMEA sentences from the sensor until a GGA fix is found.
func (d *SerialProvider) GetPosition(ctx context.Context) (Position, error) {
	c := &serial.Config{Name: d.port, Baud: d.baudRate}
	s, err := serial.OpenPort(c)
	if err != nil {
		return Position{}, err
	}
	defer s.Close()

	scanner := bufio.NewScanner(s)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Position{}, err
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "$GPGGA") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			return Position{}, err
		}

		if gga, ok := sentence.(nmea.GGA); ok {
			return Position{
				Latitude:  gga.Latitude,
				Longitude: gga.Longitude,
				Accuracy:  float64(gga.HDOP), // HDOP as a proxy for accuracy
			}, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return Position{}, err
	}

	return Position{}, errors.New("no valid GPS data found")
}

// Close is a no-op; the serial port is opened per query.
func (d *SerialProvider) Close() error {
	return nil
}
