package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"climate-risk/internal/floodzone"
	"climate-risk/internal/logger"
	"climate-risk/internal/risk"
	"climate-risk/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：洪水区离线核查工具
// 背景：加载一次数据集后对多个坐标逐一分级，便于核对数据集与分级规则；输出每行一个 JSON。
// 用法：flood-lookup [-url URL | -file PATH] lat,lon [lat,lon ...]
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	url := flag.String("url", os.Getenv("FLOOD_ZONES_URL"), "flood zone GeoJSON URL")
	file := flag.String("file", "", "local GeoJSON file (overrides -url)")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: flood-lookup [-url URL | -file PATH] lat,lon [lat,lon ...]")
		os.Exit(2)
	}

	var src floodzone.DatasetSource
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			l.Error("dataset_open_error", "err", err)
			os.Exit(1)
		}
		ds, err := floodzone.DecodeDataset(f)
		_ = f.Close()
		if err != nil {
			l.Error("dataset_decode_error", "err", err)
			os.Exit(1)
		}
		src = staticSource{ds}
	} else {
		src = floodzone.NewLoader(floodzone.LoaderOptions{
			URL:     *url,
			Timeout: utils.EnvDuration("FLOOD_DATASET_TIMEOUT", floodzone.DefaultDatasetTimeout),
		})
	}

	svc := floodzone.NewService(src)
	enc := json.NewEncoder(os.Stdout)
	ctx := context.Background()
	for _, arg := range flag.Args() {
		loc, err := parsePair(arg)
		if err != nil {
			l.Error("bad_coordinate", "arg", arg, "err", err)
			continue
		}
		_ = enc.Encode(map[string]any{"query": arg, "flood": svc.Assess(ctx, loc)})
	}
}

type staticSource struct{ ds *floodzone.Dataset }

func (s staticSource) Load(context.Context) (*floodzone.Dataset, error) { return s.ds, nil }

func parsePair(s string) (risk.Location, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return risk.Location{}, fmt.Errorf("want lat,lon got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return risk.Location{}, err
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return risk.Location{}, err
	}
	return risk.At(lat, lon), nil
}
