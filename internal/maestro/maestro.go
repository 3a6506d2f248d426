// internal/maestro speaks the Pololu Maestro servo controller protocol.
// Commands use the Pololu wire format (0xAA, device number, command) so
// several boards can share one serial line. Positions are in quarter
// microseconds of servo pulse width, the controller's native unit.
package maestro

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"

	"github.com/SeamusWaldron/cubebot/internal/config"
)

// Command bytes, before the Pololu protocol transform.
const (
	cmdSetTarget      = 0x84
	cmdSetSpeed       = 0x87
	cmdSetAccel       = 0x89
	cmdGetPosition    = 0x90
	cmdGetMovingState = 0x93
	cmdGetErrors      = 0xA1
	cmdGoHome         = 0xA2
)

const protocolStart = 0xAA

// Port is the transport under the controller. *serial.Port satisfies it;
// tests substitute an in-memory fake.
type Port interface {
	io.ReadWriteCloser
}

// Controller drives one Maestro board. All methods are safe for
// concurrent use; commands are serialized on the wire.
type Controller struct {
	mu     sync.Mutex
	port   Port
	device byte
}

// Open connects to the board over the configured serial port.
func Open(cfg config.SerialConfig) (*Controller, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("maestro: open %s: %w", cfg.Port, err)
	}
	return NewController(port, byte(cfg.Device)), nil
}

// NewController wraps an already open transport.
func NewController(port Port, device byte) *Controller {
	return &Controller{port: port, device: device}
}

// Close releases the transport.
func (c *Controller) Close() error {
	return c.port.Close()
}

// command frames and writes one command with its payload.
func (c *Controller) command(cmd byte, payload ...byte) error {
	frame := make([]byte, 0, 3+len(payload))
	frame = append(frame, protocolStart, c.device, cmd&0x7F)
	frame = append(frame, payload...)
	if _, err := c.port.Write(frame); err != nil {
		return fmt.Errorf("maestro: write command %#x: %w", cmd, err)
	}
	return nil
}

// lowHigh splits a 14-bit value into the protocol's two 7-bit bytes.
func lowHigh(v int) (byte, byte) {
	return byte(v & 0x7F), byte((v >> 7) & 0x7F)
}

// readReply reads an n-byte response.
func (c *Controller) readReply(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.port, buf); err != nil {
		return nil, fmt.Errorf("maestro: read reply: %w", err)
	}
	return buf, nil
}

// SetTarget commands a channel to a pulse width in quarter microseconds.
// Zero tells the board to stop driving the channel.
func (c *Controller) SetTarget(channel, qus int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	lo, hi := lowHigh(qus)
	return c.command(cmdSetTarget, byte(channel), lo, hi)
}

// SetSpeed limits a channel's slew rate, in units of qus per 10ms. Zero
// removes the limit.
func (c *Controller) SetSpeed(channel, speed int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	lo, hi := lowHigh(speed)
	return c.command(cmdSetSpeed, byte(channel), lo, hi)
}

// SetAccel limits a channel's acceleration. Zero removes the limit.
func (c *Controller) SetAccel(channel, accel int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	lo, hi := lowHigh(accel)
	return c.command(cmdSetAccel, byte(channel), lo, hi)
}

// Position reads back a channel's current pulse width in quarter
// microseconds.
func (c *Controller) Position(channel int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.command(cmdGetPosition, byte(channel)); err != nil {
		return 0, err
	}
	buf, err := c.readReply(2)
	if err != nil {
		return 0, err
	}
	return int(buf[0]) | int(buf[1])<<8, nil
}

// Moving reports whether any channel is still slewing toward its target.
// Only meaningful when speed or acceleration limits are set.
func (c *Controller) Moving() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.command(cmdGetMovingState); err != nil {
		return false, err
	}
	buf, err := c.readReply(1)
	if err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

// Errors reads and clears the board's error register.
func (c *Controller) Errors() (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.command(cmdGetErrors); err != nil {
		return 0, err
	}
	buf, err := c.readReply(2)
	if err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

// GoHome sends every channel to its configured startup position.
func (c *Controller) GoHome() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(cmdGoHome)
}

// WaitSettled polls a channel until its reported position is within
// deadband of target, checking every interval up to the deadline.
func (c *Controller) WaitSettled(channel, target, deadband int, interval, deadline time.Duration) (int, error) {
	stop := time.Now().Add(deadline)
	for {
		pos, err := c.Position(channel)
		if err != nil {
			return 0, err
		}
		if diff := pos - target; diff >= -deadband && diff <= deadband {
			return pos, nil
		}
		if time.Now().After(stop) {
			return pos, fmt.Errorf("maestro: channel %d settled at %d, target %d", channel, pos, target)
		}
		time.Sleep(interval)
	}
}
