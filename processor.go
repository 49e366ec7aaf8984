package atlasgen

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sc-workshop/AtlasGenerator/geom"
	"github.com/sc-workshop/AtlasGenerator/utils"
)

// validExtensions lists the source image formats FromPath accepts
// when walking a directory tree looking for sprites to pack.
var validExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

// decodeJob is one file discovered under a CLI path argument, paired
// with its optional sibling guide rectangle.
type decodeJob struct {
	path  string
	guide *geom.Rect
}

// decodeResult is what a decode worker hands back for one job.
type decodeResult struct {
	job  decodeJob
	item *Item
	err  error
}

// Processor drives the whole CLI pipeline: discover source files,
// decode them concurrently, run them through a Generator, and write
// the resulting atlas pages and manifest to OutDir.
type Processor struct {
	Cfg       Config
	OutDir    string
	Force     bool
	Debug     bool
	ItemDebug bool
	Workers   int
	Format    AtlasImageFormat
	Preview   bool

	Spinner *utils.Spinner
}

// NewProcessor builds a Processor with workers clamped to
// runtime.NumCPU() when left at zero or set unreasonably high.
func NewProcessor(cfg Config, outDir string, force, debug, itemDebug, preview bool, workers int, format AtlasImageFormat) *Processor {
	if workers <= 0 || workers > runtime.NumCPU() {
		workers = runtime.NumCPU()
	}
	return &Processor{
		Cfg:       cfg,
		OutDir:    outDir,
		Force:     force,
		Debug:     debug,
		ItemDebug: itemDebug,
		Preview:   preview,
		Workers:   workers,
		Format:    format,
	}
}

// Run discovers every source image under paths, decodes them, packs
// them into atlas pages and writes out_dir/atlas_<i>.png (or .bmp, per
// Format) plus
// out_dir/atlas.txt: a spinner, a walk over the input, a bounded
// worker pool, then a single writer pass once everything has been
// produced.
func (p *Processor) Run(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("atlasgen: no input paths given")
	}

	if _, err := os.Stat(p.OutDir); err == nil && !p.Force {
		return fmt.Errorf("atlasgen: %s already exists (use --force to overwrite)", p.OutDir)
	}
	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return fmt.Errorf("atlasgen: could not create %s: %w", p.OutDir, err)
	}

	defaultMsg := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ ATLASGEN", utils.StatusMessage),
		utils.DecorateText("⇢ generating atlas (be patient, it may take a while)...", utils.DefaultMessage),
	)
	p.Spinner = utils.NewSpinner(defaultMsg, time.Millisecond*80, true)
	p.Spinner.Start()

	now := time.Now()

	jobs, err := discoverJobs(paths)
	if err == nil && len(jobs) == 0 {
		err = fmt.Errorf("atlasgen: no supported image files found under %v", paths)
	}
	if err != nil {
		p.failSpinner(err)
		return err
	}

	items, results, err := p.decodeAll(jobs)
	if err != nil {
		p.failSpinner(err)
		return err
	}

	gen := NewGenerator(p.Cfg)
	if _, err := gen.Generate(items); err != nil {
		p.failSpinner(err)
		return err
	}

	if p.ItemDebug {
		p.reportSlicedItems(results)
	}

	if err := p.writeAtlases(gen); err != nil {
		p.failSpinner(err)
		return err
	}
	if err := p.writeManifest(results); err != nil {
		p.failSpinner(err)
		return err
	}

	p.Spinner.StopMsg = fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ ATLASGEN", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the atlas has been generated successfully ✔", utils.SuccessMessage),
	)
	p.Spinner.Stop()

	fmt.Fprintf(os.Stderr, "\n%d atlas page(s) written to %s\n", gen.AtlasCount(), p.OutDir)
	fmt.Fprintf(os.Stderr, "Execution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))

	if p.Preview {
		return Preview(gen, items)
	}
	return nil
}

func (p *Processor) failSpinner(err error) {
	p.Spinner.StopMsg = fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ ATLASGEN", utils.StatusMessage),
		utils.DecorateText("generation failed...", utils.DefaultMessage),
		utils.DecorateText("✘ "+err.Error(), utils.ErrorMessage),
	)
	p.Spinner.Stop()
}

// discoverJobs walks every path argument (file or directory), matching
// supported extensions, and attaches a guide rectangle when a sibling
// <file>_guide.txt exists.
func discoverJobs(paths []string) ([]decodeJob, error) {
	var jobs []decodeJob
	for _, root := range paths {
		fi, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("atlasgen: cannot stat %s: %w", root, err)
		}
		if !fi.IsDir() {
			job, ok, err := toJob(root)
			if err != nil {
				return nil, err
			}
			if ok {
				jobs = append(jobs, job)
			}
			continue
		}
		err = filepath.Walk(root, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			job, ok, err := toJob(path)
			if err != nil {
				return err
			}
			if ok {
				jobs = append(jobs, job)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].path < jobs[j].path })
	return jobs, nil
}

func toJob(path string) (decodeJob, bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if strings.HasSuffix(strings.TrimSuffix(path, ext), "_guide") {
		return decodeJob{}, false, nil
	}
	supported := false
	for _, e := range validExtensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		return decodeJob{}, false, nil
	}

	guidePath := strings.TrimSuffix(path, ext) + "_guide.txt"
	job := decodeJob{path: path}
	if _, err := os.Stat(guidePath); err == nil {
		rect, err := parseGuideFile(guidePath)
		if err != nil {
			return decodeJob{}, false, fmt.Errorf("atlasgen: %s: %w", guidePath, err)
		}
		job.guide = &rect
	}
	return job, true, nil
}

// parseGuideFile reads the four newline-separated floats left top
// right bottom a <file>_guide.txt sidecar holds.
func parseGuideFile(path string) (geom.Rect, error) {
	f, err := os.Open(path)
	if err != nil {
		return geom.Rect{}, err
	}
	defer f.Close()

	var vals [4]float64
	sc := bufio.NewScanner(f)
	for i := 0; i < 4 && sc.Scan(); i++ {
		line := strings.TrimSpace(sc.Text())
		if _, err := fmt.Sscanf(line, "%g", &vals[i]); err != nil {
			return geom.Rect{}, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	if err := sc.Err(); err != nil {
		return geom.Rect{}, err
	}
	return geom.Rect{
		Left:   int32(vals[0]),
		Top:    int32(vals[1]),
		Right:  int32(vals[2]),
		Bottom: int32(vals[3]),
	}, nil
}

// decodeAll decodes every job's source file into an Item, fanning out
// across p.Workers goroutines, then draining the results in discovery
// order so the manifest writer's ordering is reproducible.
func (p *Processor) decodeAll(jobs []decodeJob) ([]*Item, []decodeResult, error) {
	jobCh := make(chan decodeJob)
	resCh := make(chan decodeResult)

	var wg sync.WaitGroup
	wg.Add(p.Workers)
	for w := 0; w < p.Workers; w++ {
		go func() {
			defer wg.Done()
			for job := range jobCh {
				it, err := FromPath(job.path, job.guide != nil)
				resCh <- decodeResult{job: job, item: it, err: err}
			}
		}()
	}
	go func() {
		defer close(jobCh)
		for _, j := range jobs {
			jobCh <- j
		}
	}()
	go func() {
		wg.Wait()
		close(resCh)
	}()

	byPath := make(map[string]decodeResult, len(jobs))
	for res := range resCh {
		if res.err != nil {
			return nil, nil, res.err
		}
		byPath[res.job.path] = res
	}

	items := make([]*Item, len(jobs))
	results := make([]decodeResult, len(jobs))
	for i, j := range jobs {
		res := byPath[j.path]
		items[i] = res.item
		results[i] = res
	}
	return items, results, nil
}

// reportSlicedItems exercises Item.GetNineSlice for every sliced item
// so --item-debug surfaces a region count per guide, rather than
// leaving the 9-slice API wired only through tests.
func (p *Processor) reportSlicedItems(results []decodeResult) {
	for _, res := range results {
		if res.job.guide == nil {
			continue
		}
		regions, err := res.item.GetNineSlice(*res.job.guide, res.item.Transform())
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", res.job.path, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "  %s: %d sliced region(s)\n", res.job.path, len(regions))
	}
}

// writeAtlases encodes every atlas page produced by gen to
// out_dir/atlas_<i>.png or out_dir/atlas_<i>.bmp, per Format.
func (p *Processor) writeAtlases(gen *Generator) error {
	for i := 0; i < gen.AtlasCount(); i++ {
		name := filepath.Join(p.OutDir, fmt.Sprintf("atlas_%d%s", i, p.Format.ext()))
		if err := encodeAtlasPage(gen.GetAtlas(i), name, p.Format); err != nil {
			return fmt.Errorf("atlasgen: could not write %s: %w", name, err)
		}
	}
	return nil
}

// writeManifest writes out_dir/atlas.txt: per item, path=,
// textureIndex=, uv= (the item's UV vertices run through its packing
// transform and divided back down by config.scale), xy= (the item's
// raw XY vertices, untransformed), then a blank line.
func (p *Processor) writeManifest(results []decodeResult) error {
	name := filepath.Join(p.OutDir, "atlas.txt")
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	scale := p.Cfg.Scale()
	for _, res := range results {
		it := res.item
		fmt.Fprintf(w, "path=%q\n", res.job.path)
		fmt.Fprintf(w, "textureIndex=%d\n", it.TextureIndex())

		fmt.Fprint(w, "uv=[")
		for i, v := range it.Vertices() {
			uv := geom.Point{X: int32(v.UV.X), Y: int32(v.UV.Y)}
			placed := it.Transform().TransformPoint(uv)
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "(%g,%g)", float64(placed.X)/scale, float64(placed.Y)/scale)
		}
		fmt.Fprint(w, "]\n")

		fmt.Fprint(w, "xy=[")
		for i, v := range it.Vertices() {
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "(%d,%d)", v.XY.X, v.XY.Y)
		}
		fmt.Fprint(w, "]\n\n")
	}
	return w.Flush()
}
