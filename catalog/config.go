/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package catalog

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the optional, host-supplied configuration for a YAMLDirectory
// provider: where descriptor files live, and how often a host that does
// not wire up Watcher should poll instead.
type Config struct {
	Dir          string        `mapstructure:"dir"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

const (
	flagDir          = "taps-catalog-dir"
	flagPollInterval = "taps-catalog-poll-interval"
)

// RegisterFlag wires Config's fields into cmd/vpr, mirroring the teacher's
// config.Component.RegisterFlag(cmd, vpr) shape so a host daemon (out of
// scope here) can fold catalog configuration into its own flag tree
// without this module depending on a particular CLI.
func RegisterFlag(cmd *cobra.Command, vpr *viper.Viper) error {
	cmd.Flags().String(flagDir, "/etc/taps", "directory containing catalog descriptor files")
	cmd.Flags().Duration(flagPollInterval, 30*time.Second, "fallback poll interval when filesystem events are unavailable")

	if err := vpr.BindPFlag("catalog.dir", cmd.Flags().Lookup(flagDir)); err != nil {
		return err
	}
	return vpr.BindPFlag("catalog.poll_interval", cmd.Flags().Lookup(flagPollInterval))
}

// LoadConfig reads Config out of vpr under the "catalog" key.
func LoadConfig(vpr *viper.Viper) (Config, error) {
	var cfg Config
	err := vpr.UnmarshalKey("catalog", &cfg)
	return cfg, err
}
