package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/Neumenon/firedoc/firedoc"
	"github.com/Neumenon/firedoc/internal/codec"
	"github.com/Neumenon/firedoc/internal/log"
)

func newDecodeCmd(load loadFunc) *cobra.Command {
	var (
		format   string
		document bool
		pretty   bool
	)
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Convert a tagged fields mapping to plain JSON",
		Long: `Convert a tagged fields mapping to plain JSON, YAML or CBOR.

With --document the input is a document resource and its "fields" member
is converted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			f, err := codec.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := readInput(fileArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			if document {
				fields := gjson.GetBytes(data, firedoc.FieldsKey)
				if !fields.IsObject() {
					return fmt.Errorf("decode: document has no %s object", firedoc.FieldsKey)
				}
				data = []byte(fields.Raw)
			}

			ctx := cmd.Context()
			opts := cfg.ConvertOptions()
			opts.OnDrop = func(path firedoc.Path, keys []string) {
				log.Warn(ctx).Str("path", path.String()).Strs("keys", keys).Msg("dropped value with no recognized type tag")
			}
			plain, err := firedoc.NewDecoder(opts).DecodeFieldsJSON(data)
			if err != nil {
				return err
			}
			return codec.Write(cmd.OutOrStdout(), f, plain, pretty)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(codec.JSON), "output format (json, yaml, cbor)")
	cmd.Flags().BoolVar(&document, "document", false, "input is a document resource with a fields member")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	cmd.Flags().Bool("strict", false, "fail on values with no recognized type tag")
	cmd.Flags().Int("max-depth", firedoc.DefaultMaxDepth, "maximum nesting depth")
	return cmd
}

func newEncodeCmd(load loadFunc) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Convert a plain JSON object to a tagged fields mapping",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			data, err := readInput(fileArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			fields, err := firedoc.NewEncoder(cfg.ConvertOptions()).EncodeFieldsJSON(data)
			if err != nil {
				return err
			}
			return codec.Write(cmd.OutOrStdout(), codec.JSON, fields, pretty)
		},
	}
	cmd.Flags().String("number-policy", firedoc.NumbersAsInteger.String(), "number tagging (integer, fractional-double)")
	cmd.Flags().Int("max-depth", firedoc.DefaultMaxDepth, "maximum nesting depth")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent output")
	return cmd
}
