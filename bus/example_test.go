package bus

import (
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

func ExampleBus() {
	host.Init()
	b := &Bus{
		CLK: gpioreg.ByName("GPIO12"),
		RW:  gpioreg.ByName("GPIO16"),
		OE:  gpioreg.ByName("GPIO20"),
	}
	for i, name := range []string{
		"GPIO2", "GPIO3", "GPIO4", "GPIO17", "GPIO27", "GPIO22",
		"GPIO10", "GPIO9", "GPIO11", "GPIO5", "GPIO6", "GPIO13",
	} {
		b.Addr[i] = gpioreg.ByName(name)
	}
	for i, name := range []string{
		"GPIO14", "GPIO15", "GPIO18", "GPIO23",
		"GPIO24", "GPIO25", "GPIO8", "GPIO7",
	} {
		b.Data[i] = gpioreg.ByName(name)
	}
	b.CS[0] = gpioreg.ByName("GPIO19")
	b.CS[1] = gpioreg.ByName("GPIO26")

	b.ConfigureAddressBus()
	b.ConfigureControlLines()
	b.WriteCycle(Select0, 0x001, 'A')
}
