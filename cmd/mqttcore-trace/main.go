// Command mqttcore-trace feeds a captured MQTT byte stream through a
// single mqttcore.Connection and prints the resulting event trace. It
// opens a file, never a socket: a sans-I/O driver demo, not a client.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mqttkit/core/mqttcore"
	"github.com/mqttkit/core/packet"
)

func main() {
	var (
		role    = flag.String("role", "client", "perspective to replay the capture from: client or server")
		version = flag.Int("version", 5, "protocol version: 4 (3.1.1) or 5 (5.0)")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mqttcore-trace [-role client|server] [-version 4|5] <capture-file>")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read capture:", err)
		os.Exit(1)
	}

	r := packet.RoleClient
	if *role == "server" {
		r = packet.RoleServer
	}
	v := packet.V500
	if *version == 4 {
		v = packet.V311
	}

	conn := mqttcore.New(r, v, mqttcore.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))))
	events, consumed := conn.Recv(data)
	fmt.Printf("consumed %d/%d bytes, status=%s\n", consumed, len(data), conn.Status())
	for i, ev := range events {
		printEvent(i, ev)
	}
}

func printEvent(i int, ev mqttcore.Event) {
	switch ev.Kind {
	case mqttcore.EventRequestSendPacket:
		fmt.Printf("%3d  send      %s\n", i, ev.Packet.PacketType())
	case mqttcore.EventRequestTimerReset:
		fmt.Printf("%3d  timer+    %s in %dms\n", i, ev.TimerKind, ev.TimerMillis)
	case mqttcore.EventRequestTimerCancel:
		fmt.Printf("%3d  timer-    %s\n", i, ev.TimerKind)
	case mqttcore.EventRequestClose:
		fmt.Printf("%3d  close\n", i)
	case mqttcore.EventNotifyPacketReceived:
		fmt.Printf("%3d  notify    %s\n", i, ev.Packet.PacketType())
	case mqttcore.EventNotifyPacketIDReleased:
		fmt.Printf("%3d  released  id=%d\n", i, ev.PacketID)
	case mqttcore.EventNotifyError:
		fmt.Printf("%3d  error     %v\n", i, ev.Err)
	}
}
