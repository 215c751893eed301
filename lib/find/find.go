// Package find locates the USB serial adapter a supply is cabled
// through, by walking the kernel's /sys/class/tty view of attached
// devices.
package find

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Device is one USB-attached serial device.
type Device struct {
	Name      string // tty name, e.g. ttyUSB0
	SysPath   string
	ProductID string
	VendorID  string
	Vendor    string
	Product   string
	Serial    string
}

// Path returns the /dev node for the device.
func (d Device) Path() string { return "/dev/" + d.Name }

func (d Device) String() string {
	return fmt.Sprintf("%s vid/pid %s/%s vendor/product %s/%s serial %s",
		d.Path(), d.VendorID, d.ProductID, d.Vendor, d.Product, d.Serial)
}

// Filter narrows device choices. The first device for which it returns
// true is chosen.
type Filter func(*Device) bool

// BySerial matches the adapter with the given USB serial number. Serial
// numbers survive re-enumeration, so they are the stable way to name a
// bench setup.
func BySerial(s string) Filter {
	return func(d *Device) bool { return d.Serial == s }
}

// ByVendor matches adapters from the given USB vendor ID, e.g. "0403"
// for the FTDI bridges common on RS-232 adapter cables.
func ByVendor(id string) Filter {
	return func(d *Device) bool { return d.VendorID == id }
}

// Find returns the /dev path of the matching serial device. With a nil
// filter it succeeds only when exactly one USB serial device is
// attached.
func Find(filter Filter) (string, error) {
	devs, err := All()
	if err != nil {
		return "", err
	}
	return pick(devs, filter)
}

func pick(devs []Device, filter Filter) (string, error) {
	if filter != nil {
		matched := devs[:0:0]
		for i := range devs {
			if filter(&devs[i]) {
				matched = append(matched, devs[i])
			}
		}
		if len(matched) == 0 {
			return "", errors.New("no serial device matched the filter")
		}
		devs = matched
	}
	if len(devs) == 0 {
		return "", errors.New("no serial devices found")
	}
	if len(devs) == 1 {
		return devs[0].Path(), nil
	}
	return "", fmt.Errorf("%d serial devices match, pick one explicitly", len(devs))
}

// All enumerates USB serial devices. Each entry under /sys/class/tty is
// a symlink into the device tree; entries whose resolved path runs
// through a USB segment are adapters.
func All() ([]Device, error) {
	const classTTY = "/sys/class/tty/"
	entries, err := os.ReadDir(classTTY)
	if err != nil {
		return nil, err
	}
	var devs []Device
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		linked := filepath.Join(classTTY, e.Name())
		abs, err := filepath.EvalSymlinks(linked)
		if err != nil {
			log.Printf("skipping %s: %s", linked, err)
			continue
		}
		if !strings.Contains(abs, "usb") {
			continue
		}
		// The tty's device link lands on the USB interface; the
		// descriptor files live one level up, on the USB device itself.
		iface, err := filepath.EvalSymlinks(filepath.Join(abs, "device"))
		if err != nil {
			log.Printf("%s: no device link: %s", abs, err)
			continue
		}
		d := Device{Name: e.Name(), SysPath: abs}
		if err := d.readDescriptors(filepath.Dir(iface)); err != nil {
			log.Printf("%s: %s", abs, err)
		}
		devs = append(devs, d)
	}
	return devs, nil
}

// readDescriptors fills in the USB id and string descriptors. Missing
// files are not an error; the last other failure is returned and the
// fields read so far are kept.
func (d *Device) readDescriptors(usbDev string) error {
	var err error
	read := func(name string, dst *string) {
		b, rerr := os.ReadFile(filepath.Join(usbDev, name))
		if rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			err = rerr
		}
		*dst = strings.TrimSpace(string(b))
	}
	read("idProduct", &d.ProductID)
	read("idVendor", &d.VendorID)
	read("manufacturer", &d.Vendor)
	read("product", &d.Product)
	read("serial", &d.Serial)
	return err
}
