package ui

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tseda/domain/core"
	"tseda/domain/treeseq"
	"tseda/internal/errors"
)

// apiEngine builds the JSON data API. It is mounted under /api on the
// page router, so routes here are relative.
func (a *App) apiEngine() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/info", a.apiInfo)
	r.GET("/overview", a.apiOverview)

	r.GET("/individuals", a.apiIndividuals)
	r.POST("/individuals/:id/toggle", a.apiToggleIndividual)
	r.PUT("/individuals/:id/sample-set", a.apiUpdateIndividualSampleSet)
	r.POST("/individuals/batch", a.apiBatchUpdate)

	r.GET("/sample-sets", a.apiSampleSets)
	r.POST("/sample-sets", a.apiCreateSampleSet)
	r.PUT("/sample-sets/:id", a.apiUpdateSampleSet)
	r.POST("/sample-sets/:id/toggle", a.apiToggleSampleSet)

	r.GET("/stats/oneway", a.apiOneway)
	r.GET("/stats/multiway", a.apiMultiway)
	r.GET("/gnn", a.apiGNN)
	r.GET("/gnn/:id", a.apiHaplotypeGNN)

	r.GET("/geojson", a.apiGeoJSON)
	r.GET("/trees/:index", a.apiTreeByIndex)
	r.GET("/trees", a.apiTreeByPosition)
	r.GET("/export", a.apiExport)

	return r
}

func apiError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if appErr, ok := err.(*errors.AppError); ok {
		switch appErr.Code {
		case "NOT_FOUND":
			status = http.StatusNotFound
		case "INVALID_INPUT", "FORMAT_INVALID":
			status = http.StatusBadRequest
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (a *App) apiInfo(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Info())
}

func (a *App) apiOverview(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Overview())
}

func (a *App) apiIndividuals(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Individuals())
}

func (a *App) apiToggleIndividual(c *gin.Context) {
	id, err := core.ParseIndividualID(c.Param("id"))
	if err != nil {
		apiError(c, err)
		return
	}
	if err := a.store.ToggleIndividual(id); err != nil {
		apiError(c, err)
		return
	}
	ind, err := a.store.Individual(id)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, ind)
}

func (a *App) apiUpdateIndividualSampleSet(c *gin.Context) {
	id, err := core.ParseIndividualID(c.Param("id"))
	if err != nil {
		apiError(c, err)
		return
	}
	var body struct {
		SampleSet int32 `json:"sample_set_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, errors.InvalidInput("invalid request body: %v", err))
		return
	}
	if err := a.store.UpdateIndividualSampleSet(id, core.SampleSetID(body.SampleSet)); err != nil {
		apiError(c, err)
		return
	}
	ind, err := a.store.Individual(id)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, ind)
}

func (a *App) apiBatchUpdate(c *gin.Context) {
	var body struct {
		PopulationFrom int32 `json:"population_from"`
		SampleSetTo    int32 `json:"sample_set_to"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, errors.InvalidInput("invalid request body: %v", err))
		return
	}
	moved, err := a.store.BatchUpdateSampleSet(
		core.PopulationID(body.PopulationFrom), core.SampleSetID(body.SampleSetTo))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": moved})
}

func (a *App) apiSampleSets(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.SampleSets())
}

func (a *App) apiCreateSampleSet(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, errors.InvalidInput("invalid request body: %v", err))
		return
	}
	ss, err := a.store.CreateSampleSet(body.Name)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ss)
}

func (a *App) apiUpdateSampleSet(c *gin.Context) {
	id, err := core.ParseSampleSetID(c.Param("id"))
	if err != nil {
		apiError(c, err)
		return
	}
	var body struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, errors.InvalidInput("invalid request body: %v", err))
		return
	}
	ss, err := a.store.UpdateSampleSet(id, body.Name, body.Color)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, ss)
}

func (a *App) apiToggleSampleSet(c *gin.Context) {
	id, err := core.ParseSampleSetID(c.Param("id"))
	if err != nil {
		apiError(c, err)
		return
	}
	toggled, err := a.store.ToggleSampleSet(id)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"toggled": toggled})
}

func (a *App) apiOneway(c *gin.Context) {
	statistic := c.DefaultQuery("statistic", treeseq.StatDiversity)
	windowSize, err := queryWindowSize(c)
	if err != nil {
		apiError(c, err)
		return
	}
	result, err := a.store.Oneway(statistic, windowSize)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"statistic": result.Statistic,
		"windows":   result.Windows,
		"columns":   result.Columns,
		"values":    nullableMatrix(result.Values),
	})
}

func (a *App) apiMultiway(c *gin.Context) {
	statistic := c.DefaultQuery("statistic", treeseq.StatFst)
	windowSize, err := queryWindowSize(c)
	if err != nil {
		apiError(c, err)
		return
	}
	pairs, err := parsePairs(c.Query("pairs"))
	if err != nil {
		apiError(c, err)
		return
	}
	result, err := a.store.Multiway(statistic, windowSize, pairs)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"statistic": result.Statistic,
		"windows":   result.Windows,
		"columns":   result.Columns,
		"values":    nullableMatrix(result.Values),
	})
}

func (a *App) apiGNN(c *gin.Context) {
	result, err := a.store.GNNMatrix()
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"set_names": result.SetNames,
		"values":    nullableMatrix(result.Values),
	})
}

func (a *App) apiHaplotypeGNN(c *gin.Context) {
	id, err := core.ParseIndividualID(c.Param("id"))
	if err != nil {
		apiError(c, err)
		return
	}
	windowSize, err := queryWindowSize(c)
	if err != nil {
		apiError(c, err)
		return
	}
	result, err := a.store.HaplotypeGNN(id, windowSize)
	if err != nil {
		apiError(c, err)
		return
	}
	haplotypes := make([][][]*float64, len(result.Haplotypes))
	for h := range result.Haplotypes {
		haplotypes[h] = nullableMatrix(result.Haplotypes[h])
	}
	c.JSON(http.StatusOK, gin.H{
		"individual": result.Individual,
		"windows":    result.Windows,
		"set_names":  result.SetNames,
		"nodes":      result.Nodes,
		"haplotypes": haplotypes,
	})
}

// apiGeoJSON emits a FeatureCollection of the selected, geolocated
// individuals, colored by sample set.
func (a *App) apiGeoJSON(c *gin.Context) {
	sets := a.store.SampleSets()
	colors := make(map[core.SampleSetID]string, len(sets))
	names := make(map[core.SampleSetID]string, len(sets))
	for _, ss := range sets {
		colors[ss.ID] = ss.Color
		names[ss.ID] = ss.Name
	}

	features := []gin.H{}
	for _, ind := range a.store.SelectedGeolocated() {
		features = append(features, gin.H{
			"type": "Feature",
			"geometry": gin.H{
				"type":        "Point",
				"coordinates": []float64{*ind.Longitude, *ind.Latitude},
			},
			"properties": gin.H{
				"id":         ind.ID,
				"name":       ind.Name,
				"sample_set": names[ind.SampleSet],
				"color":      colors[ind.SampleSet],
				"population": ind.Population,
			},
		})
	}
	c.JSON(http.StatusOK, gin.H{"type": "FeatureCollection", "features": features})
}

func (a *App) apiTreeByIndex(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		apiError(c, errors.InvalidInput("invalid tree index %q", c.Param("index")))
		return
	}
	view, err := a.store.RenderTree(index)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *App) apiTreeByPosition(c *gin.Context) {
	position, err := strconv.ParseFloat(c.Query("position"), 64)
	if err != nil {
		apiError(c, errors.InvalidInput("invalid position %q", c.Query("position")))
		return
	}
	view, err := a.store.RenderTreeAt(position)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *App) apiExport(c *gin.Context) {
	windowSize, err := queryWindowSize(c)
	if err != nil {
		apiError(c, err)
		return
	}
	bundle := a.store.BuildExport(windowSize)

	// Build the workbook in memory first so a failure can still
	// return an error response instead of a truncated download.
	var buf bytes.Buffer
	if err := a.exporter.Export(&buf, bundle); err != nil {
		a.log.Error("export failed: %v", err)
		apiError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="tseda-export.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func queryWindowSize(c *gin.Context) (float64, error) {
	raw := c.DefaultQuery("window_size", "10000")
	windowSize, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.InvalidInput("invalid window size %q", raw)
	}
	return windowSize, nil
}

// parsePairs decodes "0-1,0-2" into index pairs. Empty means all
// distinct pairs.
func parsePairs(raw string) ([][2]int, error) {
	if raw == "" {
		return nil, nil
	}
	var pairs [][2]int
	for _, part := range strings.Split(raw, ",") {
		var i, j int
		if _, err := fmt.Sscanf(part, "%d-%d", &i, &j); err != nil {
			return nil, errors.InvalidInput("invalid pair %q", part)
		}
		pairs = append(pairs, [2]int{i, j})
	}
	return pairs, nil
}

// nullableMatrix converts NaN cells to nil so they serialize as JSON
// null.
func nullableMatrix(values [][]float64) [][]*float64 {
	out := make([][]*float64, len(values))
	for i, row := range values {
		out[i] = make([]*float64, len(row))
		for j := range row {
			if math.IsNaN(row[j]) {
				continue
			}
			v := row[j]
			out[i][j] = &v
		}
	}
	return out
}
