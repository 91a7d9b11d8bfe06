// Package xmanager provides experiment bookkeeping for research programs.
//
// A Manager binds one run to a timestamped output directory. On construction
// it creates the directory, snapshots the invoking program's source into it,
// and records run metadata. The caller then assigns named fields (seeds,
// configuration, results) and saves them all as pretty-printed JSON:
//
//	xm, err := xmanager.New("experiments", "1")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	xm.Set("seed", 42)
//	xm.Set("weights", mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
//
//	// Resolve paths for run artifacts; directories are created on demand.
//	figPath, _ := xm.Path("figures", "loss.png")
//
//	// Write all fields to <run dir>/params.json.
//	if err := xm.SaveParams(); err != nil {
//		log.Fatal(err)
//	}
//
// The companion xman CLI lists, inspects, and prunes run directories.
package xmanager
