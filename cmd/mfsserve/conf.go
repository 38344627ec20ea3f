// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"code.hybscloud.com/mfs"
	"code.hybscloud.com/mfs/mfsconf"
)

// loadConf loads a HuJSON tuning file and returns the resulting options,
// applied after the profile preset chosen in main.
func loadConf(path string) ([]mfs.Option, error) {
	cfg, err := mfsconf.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg.Options(), nil
}
