// simplefsutil is a one-shot command dispatcher for exercising SimpleFS disk
// images by hand: format a fresh image, dump its superblock/inode table, or
// create+write+read back a file as a smoke test. It is not an interactive shell.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cwarden/simplefs"
	"github.com/cwarden/simplefs/disk"
	"github.com/cwarden/simplefs/disks"
)

func main() {
	app := cli.App{
		Name:  "simplefsutil",
		Usage: "Format, inspect, and smoke-test SimpleFS disk images",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug-level diagnostics"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			formatCommand,
			debugCommand,
			touchCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

var formatCommand = &cli.Command{
	Name:      "format",
	Usage:     "Create or wipe a SimpleFS image",
	ArgsUsage: "PATH",
	Flags: []cli.Flag{
		&cli.Uint64Flag{Name: "blocks", Usage: "total blocks in the image"},
		&cli.StringFlag{Name: "profile", Usage: fmt.Sprintf("predefined image size (%v), alternative to --blocks", disks.Slugs())},
	},
	Action: func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			return cli.Exit("PATH is required", 1)
		}

		blocks, err := resolveBlockCount(c)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		d, err := disk.Open(path, blocks)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer d.Close()

		if err := simplefs.Format(d); err != nil {
			return cli.Exit(err.Error(), 1)
		}

		fmt.Printf("formatted %s with %d blocks\n", path, blocks)
		return nil
	},
}

var debugCommand = &cli.Command{
	Name:      "debug",
	Usage:     "Dump the superblock and inode table of an existing image",
	ArgsUsage: "PATH BLOCKS",
	Action: func(c *cli.Context) error {
		if c.Args().Len() < 2 {
			return cli.Exit("PATH and BLOCKS are required", 1)
		}

		blocks, err := parseBlocks(c.Args().Get(1))
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		d, err := disk.Open(c.Args().Get(0), blocks)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer d.Close()

		return simplefs.Debug(os.Stdout, d)
	},
}

var touchCommand = &cli.Command{
	Name:      "touch",
	Usage:     "Create an inode, write a string to it, and print it back",
	ArgsUsage: "PATH BLOCKS TEXT",
	Action: func(c *cli.Context) error {
		if c.Args().Len() < 3 {
			return cli.Exit("PATH, BLOCKS, and TEXT are required", 1)
		}

		blocks, err := parseBlocks(c.Args().Get(1))
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		d, err := disk.Open(c.Args().Get(0), blocks)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer d.Close()

		fs := simplefs.New()
		if err := fs.Mount(d); err != nil {
			if err := simplefs.Format(d); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if err := fs.Mount(d); err != nil {
				return cli.Exit(err.Error(), 1)
			}
		}
		defer fs.Unmount()

		inode, err := fs.Create()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		text := []byte(c.Args().Get(2))
		n, err := fs.Write(inode, text, 0)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		buf := make([]byte, n)
		if _, err := fs.Read(inode, buf, 0); err != nil {
			return cli.Exit(err.Error(), 1)
		}

		fmt.Printf("inode %d: wrote %d bytes, read back %q\n", inode, n, string(buf))
		return nil
	},
}

func resolveBlockCount(c *cli.Context) (uint32, error) {
	if profile := c.String("profile"); profile != "" {
		p, err := disks.GetProfile(profile)
		if err != nil {
			return 0, err
		}
		return p.Blocks, nil
	}
	if blocks := c.Uint64("blocks"); blocks != 0 {
		return uint32(blocks), nil
	}
	return 0, fmt.Errorf("either --blocks or --profile must be given")
}

func parseBlocks(raw string) (uint32, error) {
	var blocks uint32
	_, err := fmt.Sscanf(raw, "%d", &blocks)
	if err != nil {
		return 0, fmt.Errorf("invalid block count %q: %w", raw, err)
	}
	return blocks, nil
}
