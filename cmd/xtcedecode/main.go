// Command xtcedecode loads an XTCE mission database and decodes
// telemetry packets against one of its containers.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/container"
	"github.com/kosmodb/xtce/format"
	"github.com/kosmodb/xtce/mdbcache"
	"github.com/kosmodb/xtce/xtceload"
)

var log = logging.Logger("xtce/cmd")

var (
	xtceFiles      []string
	cachePath      string
	writeCache     bool
	compression    string
	verbose        bool
	strict         bool
	littleEndian   bool
	maxPacketBytes int
)

func compressionType(s string) (format.CompressionType, error) {
	switch s {
	case "none", "":
		return format.CompressionNone, nil
	case "zstd":
		return format.CompressionZstd, nil
	case "s2":
		return format.CompressionS2, nil
	case "lz4":
		return format.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

func loadDatabase() (*xtceload.Loaded, error) {
	if cachePath != "" && !writeCache {
		f, err := os.Open(cachePath)
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		defer f.Close()

		loaded, err := mdbcache.Read(f)
		if err != nil {
			return nil, fmt.Errorf("reading cache: %w", err)
		}
		log.Infof("loaded mission database from cache %s", cachePath)
		return loaded, nil
	}

	if len(xtceFiles) == 0 {
		return nil, fmt.Errorf("no XTCE files given")
	}

	var loadOpts []xtceload.LoaderOption
	if strict {
		loadOpts = append(loadOpts, xtceload.WithStrict(true))
	}
	if littleEndian {
		loadOpts = append(loadOpts, xtceload.WithDefaultByteOrder(bitbuf.LittleEndian))
	}

	loaded, err := xtceload.LoadFiles(xtceFiles, loadOpts...)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded mission database from %d XTCE file(s)", len(xtceFiles))

	if writeCache && cachePath != "" {
		ctype, err := compressionType(compression)
		if err != nil {
			return nil, err
		}
		f, err := os.Create(cachePath)
		if err != nil {
			return nil, fmt.Errorf("creating cache: %w", err)
		}
		defer f.Close()
		if err := mdbcache.Write(f, loaded, ctype); err != nil {
			return nil, fmt.Errorf("writing cache: %w", err)
		}
		log.Infof("wrote mission database cache to %s", cachePath)
	}

	return loaded, nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	if verbose {
		_ = logging.SetLogLevelRegex("xtce/.*", "debug")
	}

	containerRef := args[0]
	packetHex := args[1]

	loaded, err := loadDatabase()
	if err != nil {
		return err
	}
	m := loaded.MDB

	root, ok := m.SearchContainer(containerRef)
	if !ok {
		return fmt.Errorf("container %q not found in mission database", containerRef)
	}

	packet, err := hex.DecodeString(packetHex)
	if err != nil {
		return fmt.Errorf("decoding packet hex: %w", err)
	}

	var procOpts []container.ContainerProcessorOption
	if maxPacketBytes > 0 {
		procOpts = append(procOpts, container.WithMaxPacketSize(maxPacketBytes))
	}
	proc := container.New(m, loaded.Evaluators, loaded.Children, procOpts...)
	pvl, err := proc.Process(packet, root)
	if err != nil {
		return fmt.Errorf("processing packet: %w", err)
	}

	db := m.NameDB()
	out := make(map[string]any, pvl.Len())
	for _, v := range pvl.All() {
		name := m.NameToString(m.ParameterByIdx(v.Pidx).Ndescr.Name)
		out[name] = map[string]any{
			"raw": v.RawValue.String(db),
			"eng": v.EngValue.String(db),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func main() {
	root := &cobra.Command{
		Use:   "xtcedecode",
		Short: "Decode telemetry packets against an XTCE mission database",
		Long:  "xtcedecode loads an XTCE mission database and decodes a hex-encoded packet against one of its containers, printing the resulting parameter values as JSON.",
	}

	decodeCmd := &cobra.Command{
		Use:   "decode <containerRef> <packetHex>",
		Short: "Decode a single packet",
		Args:  cobra.ExactArgs(2),
		RunE:  runDecode,
	}
	decodeCmd.Flags().StringSliceVarP(&xtceFiles, "xtce", "x", nil, "XTCE XML file(s) to load (repeatable)")
	decodeCmd.Flags().StringVarP(&cachePath, "cache", "c", "", "mission database cache file")
	decodeCmd.Flags().BoolVar(&writeCache, "write-cache", false, "write the cache file instead of reading it")
	decodeCmd.Flags().StringVar(&compression, "compression", "zstd", "cache compression: none, zstd, s2, lz4")
	decodeCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	decodeCmd.Flags().BoolVar(&strict, "strict", false, "reject an unrecognized XTCE comparisonOperator value instead of defaulting it")
	decodeCmd.Flags().BoolVar(&littleEndian, "little-endian-default", false, "assume little-endian for encodings that omit byteOrder")
	decodeCmd.Flags().IntVar(&maxPacketBytes, "max-packet-bytes", 0, "override the packet size limit (0 keeps the default)")

	root.AddCommand(decodeCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
