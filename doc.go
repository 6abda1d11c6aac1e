// Package animerec 是一个基于内容的番剧推荐引擎。
//
// 设计要点：
//   - 编码器可替换：稀疏 TF-IDF 与稠密预训练模型共用同一个相似度排序器（feature.Encoder）
//   - 矩阵只构建一次：build-or-get 由 singleflight 合并，构建后只读共享（recall.Content）
//   - 降级而不报错：空文档、模型失败得到零向量，原因记录在 Vector.Reason 上
//   - Labels-first：结果上的 recall_source / encoder / signal 标签贯穿后处理链，便于解释与过滤
//
// 入口见 cmd/animerec，HTTP 接入见 server。
package animerec
