// Command svdagctl builds, inspects, and queries SVDAG/SSVDAG files from
// the command line. Flag parsing, exit codes, and all user-facing
// logging live here; the core package never logs or calls os.Exit.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/sparsevoxel/svdag"
	"github.com/sparsevoxel/svdag/internal/geom"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("svdagctl: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: svdagctl <build|query|inspect> [flags]")
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("out", "scene.svdag", "output file path")
	levels := fs.Int("levels", 8, "number of octree levels")
	points := fs.Int("points", 100_000, "number of synthetic random points to voxelize")
	seed := fs.Uint64("seed", 1, "PRNG seed for the synthetic point cloud")
	mirrored := fs.Bool("mirrored", false, "apply SDAG mirror compression in addition to DAG compression")
	legacy := fs.Bool("legacy-host-native", false, "write the header/word stream in host-native byte order")
	if err := fs.Parse(args); err != nil {
		return err
	}

	bbox := geom.BBox{Min: geom.Vec3{X: -1, Y: -1, Z: -1}, Max: geom.Vec3{X: 1, Y: 1, Z: 1}}
	vx := svdag.NewVoxelizer(*levels, bbox)

	prng := rand.New(rand.NewPCG(*seed, *seed))
	ps := &geom.SlicePointStream{Points: randomPoints(prng, *points, bbox)}

	ls, stats := vx.FromPoints(ps, svdag.VoxelizeOptions{})
	log.Printf("voxelized %d points into %d SVO nodes (%d leaf) in %s", *points, stats.NNodesSVO, stats.NNodesLastLevSVO, stats.BuildSVOTime)

	dagStats := svdag.DAGCompressor{}.ToDAG(ls)
	log.Printf("DAG: %d -> %d nodes", dagStats.TotalBefore(), dagStats.TotalAfter())

	if *mirrored {
		sdagStats := svdag.SDAGCompressor{Strategy: svdag.StrategyCanonical}.ToSDAG(ls)
		log.Printf("SDAG: %d -> %d nodes", sdagStats.TotalBefore(), sdagStats.TotalAfter())
	}

	enc, err := svdag.Encoder{}.Encode(ls, bbox, svdag.EncodeOptions{Mirrored: *mirrored})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close()

	ser := svdag.Serializer{LegacyHostNative: *legacy}
	if err := ser.Save(f, enc); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	log.Printf("wrote %s: %d words, firstLeafPtr=%d", *out, len(enc.D), enc.FirstLeafPtr)
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	in := fs.String("in", "scene.svdag", "input file path")
	mirrored := fs.Bool("mirrored", false, "the file was encoded with SDAG mirror bits")
	legacy := fs.Bool("legacy-host-native", false, "read the header/word stream in host-native byte order")
	x := fs.Float64("x", 0, "query point X")
	y := fs.Float64("y", 0, "query point Y")
	z := fs.Float64("z", 0, "query point Z")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("open %s: %w", *in, err)
	}
	defer f.Close()

	ser := svdag.Serializer{LegacyHostNative: *legacy}
	enc, err := ser.Load(f, *mirrored)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	tr := svdag.NewEncodedTraverser(enc)
	depth := tr.Traverse(geom.Vec3{X: *x, Y: *y, Z: *z})
	fmt.Printf("depth=%d\n", depth)
	return nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	in := fs.String("in", "scene.svdag", "input file path")
	mirrored := fs.Bool("mirrored", false, "the file was encoded with SDAG mirror bits")
	legacy := fs.Bool("legacy-host-native", false, "read the header/word stream in host-native byte order")
	check := fs.Bool("check", false, "validate child-pointer integrity before reporting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("open %s: %w", *in, err)
	}
	defer f.Close()

	ser := svdag.Serializer{LegacyHostNative: *legacy}
	enc, err := ser.Load(f, *mirrored)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	if *check {
		if err := ser.CheckIntegrity(enc); err != nil {
			return fmt.Errorf("integrity check: %w", err)
		}
		fmt.Println("integrity: ok")
	}

	fmt.Printf("levels=%d nNodes=%d firstLeafPtr=%d wordCount=%d rootSide=%g mirrored=%v\n",
		enc.Levels, enc.NNodes, enc.FirstLeafPtr, len(enc.D), enc.RootSide, enc.Mirrored)
	return nil
}

func randomPoints(prng *rand.Rand, n int, bbox geom.BBox) []geom.Vec3 {
	pts := make([]geom.Vec3, n)
	for i := range pts {
		pts[i] = geom.Vec3{
			X: bbox.Min.X + prng.Float64()*(bbox.Max.X-bbox.Min.X),
			Y: bbox.Min.Y + prng.Float64()*(bbox.Max.Y-bbox.Min.Y),
			Z: bbox.Min.Z + prng.Float64()*(bbox.Max.Z-bbox.Min.Z),
		}
	}
	return pts
}
